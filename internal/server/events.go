package server

import (
	"time"

	"slotcast/internal/models"
)

// Realtime event names shared by the hub and the services. Outbound events
// go to every connected client; inbound events arrive from any client as an
// alternate control path to the REST surface.
const (
	EventConnectionStatus = "connection:status"
	EventSlotsState       = "slots:state"
	EventSlotUpdated      = "slot:updated"
	EventSceneLoaded      = "scene:loaded"
	EventError            = "error"
	EventPong             = "pong"

	EventSlotUpdate = "slot:update"
	EventSlotClear  = "slot:clear"
	EventSceneLoad  = "scene:load"
	EventPing       = "ping"
)

// Broadcaster fans an event out to every connected realtime client.
// Services call it after a mutation has been persisted; the no-op
// implementation keeps services testable without a hub.
type Broadcaster interface {
	Broadcast(event string, data any)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, any) {}

// ConnectionStatusPayload greets a newly connected client.
type ConnectionStatusPayload struct {
	Status    string    `json:"status"`
	ClientID  string    `json:"clientId"`
	Timestamp time.Time `json:"timestamp"`
}

// SlotsStatePayload carries the full registry snapshot on connect.
type SlotsStatePayload struct {
	Slots     map[string]models.Slot `json:"slots"`
	Timestamp time.Time              `json:"timestamp"`
}

// SlotUpdatedPayload is broadcast after any single-slot mutation. Timestamp
// is the wall clock of the event; a cleared slot keeps a nil updatedAt in
// the registry while the event still carries when the clear happened.
type SlotUpdatedPayload struct {
	Slot      string    `json:"slot"`
	ImageID   *string   `json:"imageId"`
	ImageURL  *string   `json:"imageUrl"`
	Timestamp time.Time `json:"timestamp"`
}

// SceneLoadedPayload is broadcast once per scene load. Slots is the scene's
// own mapping; AllSlots is the full registry snapshot after the load, so a
// viewer can resynchronize even if it missed earlier slot events.
type SceneLoadedPayload struct {
	SceneID   int64                  `json:"sceneId"`
	SceneName string                 `json:"sceneName"`
	Slots     map[string]models.Slot `json:"slots"`
	AllSlots  map[string]models.Slot `json:"allSlots"`
}

// ErrorPayload is addressed to the originating client only, never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
	SceneID int64  `json:"sceneId,omitempty"`
}
