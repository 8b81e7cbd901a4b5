package main

import (
	"strings"
	"testing"
)

func TestSelectedLogLevelPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		env        string
		config     string
		wantLevel  string
		wantSource string
	}{
		{name: "flag wins", flag: "debug", env: "warn", config: "error", wantLevel: "debug", wantSource: "flag"},
		{name: "env beats config", env: "warn", config: "error", wantLevel: "warn", wantSource: "env"},
		{name: "config when nothing else", config: "error", wantLevel: "error", wantSource: "config"},
		{name: "default when all empty", wantLevel: "", wantSource: "default"},
		{name: "blank flag ignored", flag: "   ", env: "warn", wantLevel: "warn", wantSource: "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, source := selectedLogLevel(tt.flag, tt.env, tt.config)
			if level != tt.wantLevel || source != tt.wantSource {
				t.Fatalf("got (%q, %q), want (%q, %q)", level, source, tt.wantLevel, tt.wantSource)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	valid := []string{"debug", "info", "WARN", "warning", "error", ""}
	for _, raw := range valid {
		if _, err := parseLogLevel(raw); err != nil {
			t.Fatalf("%q should parse: %v", raw, err)
		}
	}

	if _, err := parseLogLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := parseLogLevel("verbose"); err != nil && !strings.Contains(err.Error(), "verbose") {
		t.Fatalf("error should name the bad level: %v", err)
	}
}

func TestConfigureLoggerForCLI(t *testing.T) {
	t.Run("bad flag level is an error", func(t *testing.T) {
		if _, err := configureLoggerForCLI("nope", "info"); err == nil {
			t.Fatal("expected error for invalid flag level")
		}
	})

	t.Run("bad config level degrades with warning", func(t *testing.T) {
		warning, err := configureLoggerForCLI("", "nope")
		if err != nil {
			t.Fatalf("config-level problem must not be fatal: %v", err)
		}
		if warning == "" {
			t.Fatal("expected a warning")
		}
	})

	t.Run("bad env level degrades with warning", func(t *testing.T) {
		t.Setenv(logLevelEnvKey, "chatty")
		warning, err := configureLoggerForCLI("", "info")
		if err != nil {
			t.Fatalf("env-level problem must not be fatal: %v", err)
		}
		if !strings.Contains(warning, logLevelEnvKey) {
			t.Fatalf("warning should name the env var: %q", warning)
		}
	})
}
