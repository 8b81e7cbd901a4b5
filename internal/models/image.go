package models

import "time"

// ImageType distinguishes uploaded files from externally hosted URLs.
type ImageType string

const (
	ImageTypeUploaded ImageType = "uploaded"
	ImageTypeURL      ImageType = "url"
)

// Image is a library entry. The slot/scene core consumes it only as an
// opaque (id, url) pair; pixel content is never inspected here.
type Image struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	Filename     string    `json:"filename,omitempty"`
	Type         ImageType `json:"type"`
	MimeType     string    `json:"mimeType,omitempty"`
	Size         int64     `json:"size,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
