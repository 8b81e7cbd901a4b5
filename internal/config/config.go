package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL          = "http://127.0.0.1:4600"
	DefaultDataDir         = "data"
	DefaultStorage         = "file"
	DefaultLogLevel        = "info"
	DefaultAllowedOrigin   = "http://localhost:5173"
	DefaultDBFileName      = "slotcast.db"
	DefaultUploadsDirName  = "uploads"
	DefaultMaxUploadBytes  = int64(10 * 1024 * 1024)

	configFileName = ".slotcast.toml"

	configDirEnvKey      = "SLOTCAST_CONFIG_DIR"
	publicURLEnvKey      = "SLOTCAST_PUBLIC_URL"
	allowedOriginsEnvKey = "SLOTCAST_ALLOWED_ORIGINS"
)

// StorageFile and StorageSQLite are the supported persistence backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config defines runtime configuration for slotcast.
type Config struct {
	APIURL         string   `toml:"api_url"`
	DataDir        string   `toml:"data_dir"`
	Storage        string   `toml:"storage"`
	DBPath         string   `toml:"db_path"`
	PublicURL      string   `toml:"public_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	LogLevel       string   `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		DataDir:        DefaultDataDir,
		Storage:        DefaultStorage,
		AllowedOrigins: []string{DefaultAllowedOrigin},
		MaxUploadBytes: DefaultMaxUploadBytes,
		LogLevel:       DefaultLogLevel,
	}
}

// Load reads config from the override dir or the working directory and
// applies env overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := configPath()
	if err != nil {
		return nil, err
	}
	if _, err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have a closed domain.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage backend %q (want %q or %q)", c.Storage, StorageFile, StorageSQLite)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}

// UploadsDir returns the directory holding uploaded image files.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, DefaultUploadsDirName)
}

// SQLitePath returns the database path, defaulting under the data dir.
func (c *Config) SQLitePath() string {
	if strings.TrimSpace(c.DBPath) != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, DefaultDBFileName)
}

// ListenAddr converts the API URL into a listen address.
func (c *Config) ListenAddr() (string, error) {
	raw := strings.TrimSpace(c.APIURL)
	if raw == "" {
		return "", fmt.Errorf("api_url is required")
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host := u.Host
		if u.Port() == "" {
			return "", fmt.Errorf("api_url %q has no port", raw)
		}
		return host, nil
	}
	if _, _, err := net.SplitHostPort(raw); err == nil {
		return raw, nil
	}
	return "", fmt.Errorf("invalid api_url %q", raw)
}

func configPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, configFileName), nil
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(publicURLEnvKey)); v != "" {
		cfg.PublicURL = v
	}
	if v := strings.TrimSpace(os.Getenv(allowedOriginsEnvKey)); v != "" {
		origins := strings.Split(v, ",")
		cleaned := origins[:0]
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cleaned = append(cleaned, origin)
			}
		}
		if len(cleaned) > 0 {
			cfg.AllowedOrigins = cleaned
		}
	}
}
