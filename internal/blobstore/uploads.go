package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PutResult describes one persisted upload.
type PutResult struct {
	Key       string
	SHA256    string
	SizeBytes int64
}

// UploadStore is the byte-storage abstraction used by the image service.
// Keys are flat filenames, so they double as public /uploads/ paths.
type UploadStore interface {
	Put(ctx context.Context, r io.Reader, ext string) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Root() string
}

// LocalUploads keeps uploaded image files in a local directory, named by
// content digest. Re-uploading identical bytes lands on the same key.
type LocalUploads struct {
	root string
}

var _ UploadStore = (*LocalUploads)(nil)

// NewLocalUploads creates an upload store rooted at root.
func NewLocalUploads(root string) (*LocalUploads, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("uploads root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalUploads{root: abs}, nil
}

// Root returns the absolute uploads directory.
func (s *LocalUploads) Root() string {
	return s.root
}

// Put streams bytes to a temp file, computes SHA-256, and publishes the
// file under <digest><ext> by rename.
func (s *LocalUploads) Put(ctx context.Context, r io.Reader, ext string) (PutResult, error) {
	var zero PutResult
	if s == nil {
		return zero, fmt.Errorf("upload store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	ext, err := normalizeExt(ext)
	if err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}

	digest := hex.EncodeToString(h.Sum(nil))
	key := digest + ext
	dst := filepath.Join(s.root, key)

	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return PutResult{Key: key, SHA256: digest, SizeBytes: n}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		cleanup()
		return zero, err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr == nil {
			_ = os.Remove(tmpPath)
			return PutResult{Key: key, SHA256: digest, SizeBytes: n}, nil
		}
		cleanup()
		return zero, err
	}

	return PutResult{Key: key, SHA256: digest, SizeBytes: n}, nil
}

// Open returns a reader for an upload key.
func (s *LocalUploads) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s == nil {
		return nil, fmt.Errorf("upload store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes an uploaded file. Missing files are ignored.
func (s *LocalUploads) Delete(ctx context.Context, key string) error {
	if s == nil {
		return fmt.Errorf("upload store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFromKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalUploads) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("upload key is required")
	}
	if key != filepath.Base(key) {
		return "", fmt.Errorf("invalid upload key")
	}
	return filepath.Join(s.root, key), nil
}

func normalizeExt(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return "", nil
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("invalid file extension %q", ext)
		}
	}
	return ext, nil
}
