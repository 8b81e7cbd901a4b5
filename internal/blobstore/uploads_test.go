package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUploadsPutOpenDelete(t *testing.T) {
	s, err := NewLocalUploads(t.TempDir())
	if err != nil {
		t.Fatalf("new local uploads: %v", err)
	}
	ctx := context.Background()
	content := []byte("fake image bytes")

	put, err := s.Put(ctx, bytes.NewReader(content), ".png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if put.SizeBytes != int64(len(content)) {
		t.Fatalf("size: got %d want %d", put.SizeBytes, len(content))
	}
	if !strings.HasSuffix(put.Key, ".png") {
		t.Fatalf("key %q missing extension", put.Key)
	}
	if put.Key != put.SHA256+".png" {
		t.Fatalf("key %q is not digest-derived", put.Key)
	}

	r, err := s.Open(ctx, put.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatal("stored bytes differ")
	}

	if err := s.Delete(ctx, put.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(ctx, put.Key); err == nil {
		t.Fatal("open after delete should fail")
	}
	// Deleting again is a no-op, not an error.
	if err := s.Delete(ctx, put.Key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLocalUploadsIdenticalBytesShareKey(t *testing.T) {
	s, err := NewLocalUploads(t.TempDir())
	if err != nil {
		t.Fatalf("new local uploads: %v", err)
	}
	ctx := context.Background()
	content := []byte("same bytes")

	first, err := s.Put(ctx, bytes.NewReader(content), ".jpg")
	if err != nil {
		t.Fatalf("first put: %v", err)
	}
	second, err := s.Put(ctx, bytes.NewReader(content), ".jpg")
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if first.Key != second.Key {
		t.Fatalf("expected shared key, got %q and %q", first.Key, second.Key)
	}
}

func TestLocalUploadsRejectsTraversalKeys(t *testing.T) {
	s, err := NewLocalUploads(t.TempDir())
	if err != nil {
		t.Fatalf("new local uploads: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../secret", "a/b.png", "", "  "} {
		if _, err := s.Open(ctx, key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}

func TestLocalUploadsLeavesNoTempFilesOnSuccess(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalUploads(root)
	if err != nil {
		t.Fatalf("new local uploads: %v", err)
	}
	if _, err := s.Put(context.Background(), strings.NewReader("payload"), "png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "tmp"))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestNormalizeExt(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "png", want: ".png"},
		{in: ".JPG", want: ".jpg"},
		{in: "", want: ""},
		{in: ".we bp", wantErr: true},
		{in: "../png", wantErr: true},
	}
	for _, tt := range tests {
		got, err := normalizeExt(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %q want %q", tt.in, got, tt.want)
		}
	}
}
