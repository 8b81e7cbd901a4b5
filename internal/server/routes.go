package server

import (
	"net/http"

	"github.com/rs/cors"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Slot registry.
	mux.HandleFunc("GET /api/slots", s.handleListSlots)
	mux.HandleFunc("GET /api/slots/{slotId}", s.handleGetSlot)
	mux.HandleFunc("PUT /api/slots/{slotId}", s.handleSetSlot)
	mux.HandleFunc("DELETE /api/slots/{slotId}", s.handleClearSlot)

	// Scenes collection.
	mux.HandleFunc("GET /api/scenes", s.handleListScenes)
	mux.HandleFunc("POST /api/scenes", s.handleCreateScene)

	// Single scene.
	mux.HandleFunc("GET /api/scenes/{id}", s.handleGetScene)
	mux.HandleFunc("PUT /api/scenes/{id}", s.handleUpdateScene)
	mux.HandleFunc("DELETE /api/scenes/{id}", s.handleDeleteScene)
	mux.HandleFunc("POST /api/scenes/{id}/load", s.handleLoadScene)
	mux.HandleFunc("POST /api/scenes/{id}/capture", s.handleCaptureScene)

	// Image library.
	mux.HandleFunc("GET /api/images", s.handleListImages)
	mux.HandleFunc("POST /api/images/upload", s.handleUploadImage)
	mux.HandleFunc("POST /api/images/url", s.handleAddImageURL)
	mux.HandleFunc("DELETE /api/images/{id}", s.handleDeleteImage)

	// Uploaded file bytes.
	mux.HandleFunc("GET /uploads/{key}", s.handleServeUpload)

	// Realtime.
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	return s.withRequestLogging(c.Handler(mux))
}
