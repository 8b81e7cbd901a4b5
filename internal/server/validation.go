package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

const slotIDMaxLength = 128

// validateSlotID accepts any operator-chosen printable identifier. Slot ids
// are not enumerated or bounded by the system.
func validateSlotID(id string) error {
	if strings.TrimSpace(id) == "" {
		return badRequestCode(fmt.Errorf("slot id is required"), ErrCodeInvalidSlotID)
	}
	if len(id) > slotIDMaxLength {
		return badRequestCode(fmt.Errorf("slot id too long"), ErrCodeInvalidSlotID)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return badRequestCode(fmt.Errorf("slot id contains control characters"), ErrCodeInvalidSlotID)
		}
	}
	return nil
}

func parseSceneID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestCode(fmt.Errorf("invalid scene id %q", raw), ErrCodeInvalidSceneID)
	}
	return id, nil
}

func parseImageID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestCode(fmt.Errorf("invalid image id %q", raw), ErrCodeInvalidImageID)
	}
	return id, nil
}

func (s *Server) slotIDOrBadRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("slotId")
	if err := validateSlotID(id); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return "", false
	}
	return id, true
}

func (s *Server) sceneIDOrBadRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseSceneID(r.PathValue("id"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

func (s *Server) imageIDOrBadRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseImageID(r.PathValue("id"))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}
