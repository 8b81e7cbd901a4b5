package store

import (
	"context"

	"slotcast/internal/models"
)

// Store abstracts document persistence backends. Three independent
// collections are persisted: slots (a mapping), scenes and images (lists).
// Reads of a never-initialized collection return the empty default, not an
// error. Every write replaces the whole document and must appear atomic to
// readers.
type Store interface {
	ReadSlots(ctx context.Context) (map[string]models.Slot, error)
	WriteSlots(ctx context.Context, slots map[string]models.Slot) error

	ReadScenes(ctx context.Context) ([]models.Scene, error)
	WriteScenes(ctx context.Context, scenes []models.Scene) error

	ReadImages(ctx context.Context) ([]models.Image, error)
	WriteImages(ctx context.Context, images []models.Image) error

	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
