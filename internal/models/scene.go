package models

import "time"

// Scene is a named snapshot of all slot configurations. Slots is always a
// complete replacement snapshot, never a partial diff: loading a scene
// replaces the whole registry, capturing replaces the whole stored mapping.
type Scene struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Slots       map[string]Slot `json:"slots"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a copy with an independent slot snapshot.
func (s Scene) Clone() Scene {
	out := s
	out.Slots = CloneSlots(s.Slots)
	return out
}
