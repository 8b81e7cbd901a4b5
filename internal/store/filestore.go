package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"slotcast/internal/models"
)

const (
	slotsFileName  = "slots.json"
	scenesFileName = "scenes.json"
	imagesFileName = "images.json"
)

// FileStore persists each collection as one JSON document under a data
// directory. Writes go through a temp file and rename so readers never
// observe a partially written document.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// OpenFileStore creates the data directory and initializes missing
// collection files with their empty defaults.
func OpenFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}

	fs := &FileStore{dir: abs}
	if err := fs.ensureFile(slotsFileName, map[string]models.Slot{}); err != nil {
		return nil, err
	}
	if err := fs.ensureFile(scenesFileName, []models.Scene{}); err != nil {
		return nil, err
	}
	if err := fs.ensureFile(imagesFileName, []models.Image{}); err != nil {
		return nil, err
	}
	return fs, nil
}

// Close is a no-op; the file store holds no open handles between calls.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) ReadSlots(ctx context.Context) (map[string]models.Slot, error) {
	slots := map[string]models.Slot{}
	if err := f.readDocument(ctx, slotsFileName, &slots); err != nil {
		return nil, err
	}
	if slots == nil {
		slots = map[string]models.Slot{}
	}
	return slots, nil
}

func (f *FileStore) WriteSlots(ctx context.Context, slots map[string]models.Slot) error {
	if slots == nil {
		slots = map[string]models.Slot{}
	}
	return f.writeDocument(ctx, slotsFileName, slots)
}

func (f *FileStore) ReadScenes(ctx context.Context) ([]models.Scene, error) {
	scenes := []models.Scene{}
	if err := f.readDocument(ctx, scenesFileName, &scenes); err != nil {
		return nil, err
	}
	if scenes == nil {
		scenes = []models.Scene{}
	}
	return scenes, nil
}

func (f *FileStore) WriteScenes(ctx context.Context, scenes []models.Scene) error {
	if scenes == nil {
		scenes = []models.Scene{}
	}
	return f.writeDocument(ctx, scenesFileName, scenes)
}

func (f *FileStore) ReadImages(ctx context.Context) ([]models.Image, error) {
	images := []models.Image{}
	if err := f.readDocument(ctx, imagesFileName, &images); err != nil {
		return nil, err
	}
	if images == nil {
		images = []models.Image{}
	}
	return images, nil
}

func (f *FileStore) WriteImages(ctx context.Context, images []models.Image) error {
	if images == nil {
		images = []models.Image{}
	}
	return f.writeDocument(ctx, imagesFileName, images)
}

func (f *FileStore) ensureFile(name string, defaultDoc any) error {
	path := filepath.Join(f.dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return f.writeDocument(context.Background(), name, defaultDoc)
}

func (f *FileStore) readDocument(ctx context.Context, name string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) writeDocument(ctx context.Context, name string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(f.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
