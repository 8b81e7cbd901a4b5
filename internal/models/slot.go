package models

import "time"

// Slot is the state of one display surface. A slot with a nil ImageURL is
// empty; ImageID is informational and not required for rendering.
type Slot struct {
	ImageID   *string    `json:"imageId"`
	ImageURL  *string    `json:"imageUrl"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// EmptySlot returns the default state for a slot that was never set or was
// explicitly cleared. UpdatedAt stays nil so a cleared slot is observably
// distinct from a slot set to empty values.
func EmptySlot() Slot {
	return Slot{}
}

// IsEmpty reports whether the slot has nothing to render.
func (s Slot) IsEmpty() bool {
	return s.ImageURL == nil
}

// Clone returns a copy that shares no pointers with the receiver.
func (s Slot) Clone() Slot {
	out := Slot{}
	if s.ImageID != nil {
		v := *s.ImageID
		out.ImageID = &v
	}
	if s.ImageURL != nil {
		v := *s.ImageURL
		out.ImageURL = &v
	}
	if s.UpdatedAt != nil {
		v := *s.UpdatedAt
		out.UpdatedAt = &v
	}
	return out
}

// CloneSlots deep-copies a slot mapping. A nil input yields an empty,
// non-nil map so callers can treat the result as a complete snapshot.
func CloneSlots(slots map[string]Slot) map[string]Slot {
	out := make(map[string]Slot, len(slots))
	for id, slot := range slots {
		out[id] = slot.Clone()
	}
	return out
}
