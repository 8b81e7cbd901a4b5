package server

import (
	"net/http"

	"slotcast/internal/api"
	"slotcast/internal/models"
)

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	s.writeData(w, http.StatusOK, api.SlotsResponse{Slots: s.slots.All()})
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := s.slotIDOrBadRequest(w, r)
	if !ok {
		return
	}

	s.writeData(w, http.StatusOK, slotResponse(slotID, s.slots.Get(slotID)))
}

func (s *Server) handleSetSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := s.slotIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.SlotUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	slot, err := s.slots.Set(r.Context(), slotID, req.ImageID, req.ImageURL)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, slotResponse(slotID, slot))
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	slotID, ok := s.slotIDOrBadRequest(w, r)
	if !ok {
		return
	}

	slot, err := s.slots.Clear(r.Context(), slotID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "slot cleared", slotResponse(slotID, slot))
}

func slotResponse(slotID string, slot models.Slot) api.SlotResponse {
	return api.SlotResponse{
		Slot:      slotID,
		ImageID:   slot.ImageID,
		ImageURL:  slot.ImageURL,
		UpdatedAt: slot.UpdatedAt,
	}
}
