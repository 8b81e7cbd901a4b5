package api

import (
	"time"

	"slotcast/internal/models"
)

// Response is the JSON envelope used by every REST endpoint.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the error detail inside a failed envelope.
type ErrorBody struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// SlotUpdateRequest is the PUT /api/slots/{slotId} body. Absent fields
// normalize to null.
type SlotUpdateRequest struct {
	ImageID  *string `json:"imageId"`
	ImageURL *string `json:"imageUrl"`
}

// SlotResponse is the per-slot payload returned by slot endpoints.
type SlotResponse struct {
	Slot      string     `json:"slot"`
	ImageID   *string    `json:"imageId"`
	ImageURL  *string    `json:"imageUrl"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// SlotsResponse wraps the full registry snapshot.
type SlotsResponse struct {
	Slots map[string]models.Slot `json:"slots"`
}

// SceneCreateRequest is the POST /api/scenes body.
type SceneCreateRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Slots       map[string]models.Slot `json:"slots"`
}

// SceneUpdateRequest merges only the provided fields; the scene id is
// immutable.
type SceneUpdateRequest struct {
	Name        *string                 `json:"name"`
	Description *string                 `json:"description"`
	Slots       *map[string]models.Slot `json:"slots"`
}

// ScenesResponse wraps the scene list.
type ScenesResponse struct {
	Scenes []models.Scene `json:"scenes"`
}

// SceneLoadResponse reports the outcome of applying a scene to the registry.
type SceneLoadResponse struct {
	SceneID      int64                  `json:"sceneId"`
	SceneName    string                 `json:"sceneName"`
	SlotsUpdated int                    `json:"slotsUpdated"`
	AllSlots     map[string]models.Slot `json:"allSlots"`
}

// SceneCaptureResponse reports the outcome of snapshotting the registry
// into a scene.
type SceneCaptureResponse struct {
	SceneID       int64                  `json:"sceneId"`
	SceneName     string                 `json:"sceneName"`
	SlotsCaptured int                    `json:"slotsCaptured"`
	Slots         map[string]models.Slot `json:"slots"`
}

// ImagesResponse wraps the image library.
type ImagesResponse struct {
	Images []models.Image `json:"images"`
}

// ImageURLRequest registers an externally hosted image.
type ImageURLRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// HealthResponse is the GET /api/health payload.
type HealthResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime"`
	Timestamp     time.Time `json:"timestamp"`
}
