package server

import (
	"net/http"

	"slotcast/internal/api"
)

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.scenes.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, api.ScenesResponse{Scenes: scenes})
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req api.SceneCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	scene, err := s.scenes.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusCreated, scene)
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sceneIDOrBadRequest(w, r)
	if !ok {
		return
	}

	scene, err := s.scenes.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, scene)
}

func (s *Server) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sceneIDOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.SceneUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	scene, err := s.scenes.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, scene)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sceneIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.scenes.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeMessage(w, http.StatusOK, "scene deleted", nil)
}

func (s *Server) handleLoadScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sceneIDOrBadRequest(w, r)
	if !ok {
		return
	}

	result, err := s.scenes.Load(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, result)
}

func (s *Server) handleCaptureScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sceneIDOrBadRequest(w, r)
	if !ok {
		return
	}

	result, err := s.scenes.Capture(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeData(w, http.StatusOK, result)
}
