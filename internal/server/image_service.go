package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"slotcast/internal/blobstore"
	"slotcast/internal/models"
	"slotcast/internal/store"
)

// allowedImageTypes maps accepted media types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadInput describes one incoming image upload. BaseURL is derived from
// the request and used only when no public_url is configured.
type UploadInput struct {
	OriginalName string
	MediaType    string
	BaseURL      string
	Content      io.Reader
}

// ImageService manages the image library: uploaded files and externally
// hosted URLs. The slot/scene core consumes its entries only as (id, url)
// pairs.
type ImageService struct {
	mu        sync.Mutex
	store     store.Store
	uploads   blobstore.UploadStore
	publicURL string
	logger    *slog.Logger
}

// NewImageService constructs an ImageService.
func NewImageService(st store.Store, uploads blobstore.UploadStore, publicURL string, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{
		store:     st,
		uploads:   uploads,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
		logger:    logger,
	}
}

// List returns all library entries.
func (s *ImageService) List(ctx context.Context) ([]models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readImages(ctx)
}

// Upload stores the file bytes and appends a library record. Only png,
// jpeg, gif and webp are accepted; the media type is the sniffed one, not
// whatever the client declared.
func (s *ImageService) Upload(ctx context.Context, in UploadInput) (models.Image, error) {
	ext, ok := allowedImageTypes[in.MediaType]
	if !ok {
		return models.Image{}, badRequestCode(
			fmt.Errorf("invalid file type %q: only PNG, JPG, GIF and WebP are allowed", in.MediaType),
			ErrCodeInvalidImage,
		)
	}
	if in.Content == nil {
		return models.Image{}, badRequestCode(fmt.Errorf("no file uploaded"), ErrCodeMissingRequired)
	}

	put, err := s.uploads.Put(ctx, in.Content, ext)
	if err != nil {
		return models.Image{}, internalError(fmt.Errorf("store upload: %w", err))
	}

	image := models.Image{
		ID:           store.NextID(),
		URL:          s.uploadURL(in.BaseURL, put.Key),
		OriginalName: in.OriginalName,
		Filename:     put.Key,
		Type:         models.ImageTypeUploaded,
		MimeType:     in.MediaType,
		Size:         put.SizeBytes,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.readImages(ctx)
	if err != nil {
		return models.Image{}, err
	}
	images = append(images, image)
	if err := s.writeImages(ctx, images); err != nil {
		return models.Image{}, err
	}
	return image, nil
}

// AddURL registers an externally hosted image by URL.
func (s *ImageService) AddURL(ctx context.Context, rawURL, name string) (models.Image, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.Image{}, badRequestCode(fmt.Errorf("url is required"), ErrCodeMissingRequired)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "External Image"
	}

	image := models.Image{
		ID:           store.NextID(),
		URL:          rawURL,
		OriginalName: name,
		Type:         models.ImageTypeURL,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.readImages(ctx)
	if err != nil {
		return models.Image{}, err
	}
	images = append(images, image)
	if err := s.writeImages(ctx, images); err != nil {
		return models.Image{}, err
	}
	return image, nil
}

// Delete removes a library entry. For uploaded images the stored file is
// removed as well; a failed file removal is logged, not fatal, since the
// record is already gone.
func (s *ImageService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := s.readImages(ctx)
	if err != nil {
		return err
	}

	var removed *models.Image
	kept := images[:0]
	for i := range images {
		if images[i].ID == id {
			removed = &images[i]
			continue
		}
		kept = append(kept, images[i])
	}
	if removed == nil {
		return notFoundCode(fmt.Errorf("image %d not found", id), ErrCodeImageNotFound)
	}

	if err := s.writeImages(ctx, kept); err != nil {
		return err
	}

	if removed.Type == models.ImageTypeUploaded && removed.Filename != "" {
		if err := s.uploads.Delete(ctx, removed.Filename); err != nil {
			s.logger.Warn("delete uploaded file", "filename", removed.Filename, "error", err)
		}
	}
	return nil
}

func (s *ImageService) uploadURL(baseURL, key string) string {
	base := s.publicURL
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
	return base + "/uploads/" + key
}

func (s *ImageService) readImages(ctx context.Context) ([]models.Image, error) {
	images, err := s.store.ReadImages(ctx)
	if err != nil {
		return nil, storeFailure(fmt.Errorf("read images: %w", err))
	}
	return images, nil
}

func (s *ImageService) writeImages(ctx context.Context, images []models.Image) error {
	if err := s.store.WriteImages(ctx, images); err != nil {
		return storeFailure(fmt.Errorf("persist images: %w", err))
	}
	return nil
}
