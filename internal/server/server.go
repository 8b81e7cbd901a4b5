package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"slotcast/internal/blobstore"
	"slotcast/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr           string
	PublicURL      string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wraps the HTTP and realtime surfaces over the slot, scene and
// image services. All shared state is owned here and injected into the
// services; nothing is reachable through package globals.
type Server struct {
	addr           string
	store          store.Store
	uploads        blobstore.UploadStore
	hub            *Hub
	slots          *SlotService
	scenes         *SceneService
	images         *ImageService
	logger         *slog.Logger
	allowedOrigins []string
	maxUploadBytes int64
	startedAt      time.Time

	httpServer *http.Server
}

// New creates a server instance. The slot registry is loaded from the
// store here, so a startup with unreadable state fails fast.
func New(ctx context.Context, st store.Store, uploads blobstore.UploadStore, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hub := NewHub(logger.With("component", "hub"))
	slots, err := NewSlotService(ctx, st, hub)
	if err != nil {
		return nil, err
	}

	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return &Server{
		addr:           opts.Addr,
		store:          st,
		uploads:        uploads,
		hub:            hub,
		slots:          slots,
		scenes:         NewSceneService(st, slots, hub),
		images:         NewImageService(st, uploads, opts.PublicURL, logger.With("component", "images")),
		logger:         logger,
		allowedOrigins: opts.AllowedOrigins,
		maxUploadBytes: maxUpload,
		startedAt:      time.Now().UTC(),
	}, nil
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)

	// No global read/write timeouts: /ws connections are long-lived and
	// manage their own deadlines.
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown disconnects realtime clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Hub exposes the realtime hub, mainly for tests and diagnostics.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
