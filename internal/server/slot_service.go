package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slotcast/internal/models"
	"slotcast/internal/store"
)

// SlotService is the canonical in-memory slot registry. It is the single
// authoritative copy per process: every mutation is written through to the
// store before the in-memory mapping changes, so the mapping never diverges
// from the last durable state. Broadcasts happen after persistence, under
// the same lock, which keeps event order equal to mutation order.
type SlotService struct {
	mu          sync.Mutex
	store       store.Store
	broadcaster Broadcaster
	slots       map[string]models.Slot
	lastStamp   time.Time
}

// NewSlotService loads the persisted registry and returns the service.
func NewSlotService(ctx context.Context, st store.Store, b Broadcaster) (*SlotService, error) {
	if b == nil {
		b = noopBroadcaster{}
	}
	slots, err := st.ReadSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	return &SlotService{store: st, broadcaster: b, slots: slots}, nil
}

// All returns a full snapshot of the registry. Never fails.
func (s *SlotService) All() map[string]models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneSlots(s.slots)
}

// Get returns the slot's state, or the empty default for a slot that was
// never set. Unset slots are a valid state, not an error.
func (s *SlotService) Get(slotID string) models.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[slotID]; ok {
		return slot.Clone()
	}
	return models.EmptySlot()
}

// Set writes a slot's image reference, stamping updatedAt. Missing fields
// normalize to null. The new state is persisted before it becomes visible,
// then broadcast as a slot:updated event.
func (s *SlotService) Set(ctx context.Context, slotID string, imageID, imageURL *string) (models.Slot, error) {
	if err := validateSlotID(slotID); err != nil {
		return models.Slot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.stamp()
	slot := models.Slot{ImageID: imageID, ImageURL: imageURL, UpdatedAt: &now}

	if err := s.persist(ctx, slotID, slot); err != nil {
		return models.Slot{}, err
	}

	s.broadcaster.Broadcast(EventSlotUpdated, SlotUpdatedPayload{
		Slot:      slotID,
		ImageID:   slot.ImageID,
		ImageURL:  slot.ImageURL,
		Timestamp: now,
	})
	return slot.Clone(), nil
}

// Clear resets a slot to the empty state with a nil updatedAt, marking it
// explicitly cleared rather than set to empty values. The broadcast still
// carries the wall clock of the event.
func (s *SlotService) Clear(ctx context.Context, slotID string) (models.Slot, error) {
	if err := validateSlotID(slotID); err != nil {
		return models.Slot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot := models.EmptySlot()
	if err := s.persist(ctx, slotID, slot); err != nil {
		return models.Slot{}, err
	}

	s.broadcaster.Broadcast(EventSlotUpdated, SlotUpdatedPayload{
		Slot:      slotID,
		Timestamp: s.stamp(),
	})
	return slot, nil
}

// ReplaceAll swaps the entire registry for the given snapshot in one
// whole-document write. Used by scene load; no per-slot events are emitted.
// The announce callback, if any, runs with the registry lock still held so
// the caller's batched event lands in queue order with the per-slot events
// of concurrent Set and Clear calls. Returns the resulting snapshot.
func (s *SlotService) ReplaceAll(ctx context.Context, slots map[string]models.Slot, announce func(allSlots map[string]models.Slot)) (map[string]models.Slot, error) {
	next := models.CloneSlots(slots)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.WriteSlots(ctx, next); err != nil {
		return nil, storeFailure(fmt.Errorf("persist slots: %w", err))
	}
	s.slots = next
	snapshot := models.CloneSlots(s.slots)
	if announce != nil {
		announce(models.CloneSlots(snapshot))
	}
	return snapshot, nil
}

// Snapshot runs fn with a copy of the registry while holding the registry
// lock. No mutation, and therefore no broadcast, can interleave with fn,
// which websocket registration relies on to hand out a welcome snapshot
// that is consistent with the event stream.
func (s *SlotService) Snapshot(fn func(slots map[string]models.Slot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(models.CloneSlots(s.slots))
}

// persist writes the whole updated mapping and only then mutates memory.
// Callers must hold s.mu.
func (s *SlotService) persist(ctx context.Context, slotID string, slot models.Slot) error {
	next := models.CloneSlots(s.slots)
	next[slotID] = slot.Clone()

	if err := s.store.WriteSlots(ctx, next); err != nil {
		return storeFailure(fmt.Errorf("persist slot %q: %w", slotID, err))
	}
	s.slots = next
	return nil
}

// stamp returns a strictly increasing wall-clock timestamp. Callers must
// hold s.mu.
func (s *SlotService) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(s.lastStamp) {
		now = s.lastStamp.Add(time.Nanosecond)
	}
	s.lastStamp = now
	return now
}
