package server

import (
	"net/http"
	"time"

	"slotcast/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	s.writeData(w, http.StatusOK, api.HealthResponse{
		Status:        "ok",
		UptimeSeconds: now.Sub(s.startedAt).Seconds(),
		Timestamp:     now,
	})
}
