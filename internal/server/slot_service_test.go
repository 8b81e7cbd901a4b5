package server

import (
	"context"
	"strings"
	"testing"

	"slotcast/internal/models"
	"slotcast/internal/store"
)

func TestSlotServiceSetAndGet(t *testing.T) {
	svc, _ := newSlotServiceForTest(t, nil)
	ctx := context.Background()

	slot, err := svc.Set(ctx, "main", strptr("42"), strptr("http://img/a.png"))
	if err != nil {
		t.Fatalf("set slot: %v", err)
	}
	if slot.ImageURL == nil || *slot.ImageURL != "http://img/a.png" {
		t.Fatalf("unexpected image url: %+v", slot.ImageURL)
	}
	if slot.UpdatedAt == nil {
		t.Fatal("expected updatedAt to be stamped")
	}

	got := svc.Get("main")
	if got.ImageURL == nil || *got.ImageURL != "http://img/a.png" {
		t.Fatalf("get returned wrong state: %+v", got)
	}
}

func TestSlotServiceUnknownSlotIsEmptyNotError(t *testing.T) {
	svc, _ := newSlotServiceForTest(t, nil)

	got := svc.Get("never-touched")
	if !got.IsEmpty() {
		t.Fatalf("expected empty slot, got %+v", got)
	}
	if got.UpdatedAt != nil {
		t.Fatalf("expected nil updatedAt for unset slot, got %v", got.UpdatedAt)
	}
}

func TestSlotServiceClearResetsToDefault(t *testing.T) {
	svc, _ := newSlotServiceForTest(t, nil)
	ctx := context.Background()

	if _, err := svc.Set(ctx, "side", nil, strptr("http://img/b.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}

	cleared, err := svc.Clear(ctx, "side")
	if err != nil {
		t.Fatalf("clear slot: %v", err)
	}
	if !cleared.IsEmpty() {
		t.Fatalf("expected cleared slot to be empty, got %+v", cleared)
	}
	if cleared.UpdatedAt != nil {
		t.Fatal("cleared slot must have nil updatedAt, distinct from a set with empty values")
	}

	got := svc.Get("side")
	if !got.IsEmpty() || got.UpdatedAt != nil {
		t.Fatalf("clear did not stick: %+v", got)
	}
}

func TestSlotServiceUpdatedAtStrictlyIncreases(t *testing.T) {
	svc, _ := newSlotServiceForTest(t, nil)
	ctx := context.Background()

	first, err := svc.Set(ctx, "a", nil, strptr("http://img/1.png"))
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := svc.Set(ctx, "a", nil, strptr("http://img/2.png"))
	if err != nil {
		t.Fatalf("second set: %v", err)
	}

	if !second.UpdatedAt.After(*first.UpdatedAt) {
		t.Fatalf("expected %v > %v", second.UpdatedAt, first.UpdatedAt)
	}
}

func TestSlotServiceRejectsBadSlotIDs(t *testing.T) {
	svc, _ := newSlotServiceForTest(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{name: "blank", id: "   "},
		{name: "empty", id: ""},
		{name: "control chars", id: "a\x00b"},
		{name: "too long", id: strings.Repeat("x", 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Set(ctx, tt.id, nil, strptr("http://img/x.png")); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSlotServiceStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	st, err := store.OpenFileStore(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	svc, err := NewSlotService(ctx, st, nil)
	if err != nil {
		t.Fatalf("new slot service: %v", err)
	}
	if _, err := svc.Set(ctx, "main", nil, strptr("http://img/persist.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}

	// Second service over the same store simulates a process restart.
	reloaded, err := NewSlotService(ctx, st, nil)
	if err != nil {
		t.Fatalf("reload slot service: %v", err)
	}
	got := reloaded.Get("main")
	if got.ImageURL == nil || *got.ImageURL != "http://img/persist.png" {
		t.Fatalf("state lost across restart: %+v", got)
	}
}

func TestSlotServicePersistFailureLeavesMemoryUnchanged(t *testing.T) {
	st, err := store.OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	failing := &failingStore{Store: st}
	ctx := context.Background()

	svc, err := NewSlotService(ctx, failing, nil)
	if err != nil {
		t.Fatalf("new slot service: %v", err)
	}
	if _, err := svc.Set(ctx, "main", nil, strptr("http://img/before.png")); err != nil {
		t.Fatalf("seed set: %v", err)
	}

	failing.failWrites = true
	if _, err := svc.Set(ctx, "main", nil, strptr("http://img/after.png")); err == nil {
		t.Fatal("expected store failure to surface")
	}

	got := svc.Get("main")
	if got.ImageURL == nil || *got.ImageURL != "http://img/before.png" {
		t.Fatalf("memory diverged from last durable state: %+v", got)
	}
}

func TestSlotServiceSetBroadcastsSlotUpdated(t *testing.T) {
	b := &recordingBroadcaster{}
	svc, _ := newSlotServiceForTest(t, b)
	ctx := context.Background()

	if _, err := svc.Set(ctx, "main", nil, strptr("http://img/a.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}
	if _, err := svc.Clear(ctx, "main"); err != nil {
		t.Fatalf("clear slot: %v", err)
	}

	events := b.recorded()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.event != EventSlotUpdated {
			t.Fatalf("unexpected event %q", ev.event)
		}
	}

	cleared, ok := events[1].data.(SlotUpdatedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", events[1].data)
	}
	if cleared.ImageURL != nil || cleared.ImageID != nil {
		t.Fatalf("clear event should carry null image fields: %+v", cleared)
	}
	if cleared.Timestamp.IsZero() {
		t.Fatal("clear event must still carry a wall-clock timestamp")
	}
}

func TestSlotServiceReplaceAllDropsResidualSlots(t *testing.T) {
	b := &recordingBroadcaster{}
	svc, _ := newSlotServiceForTest(t, b)
	ctx := context.Background()

	if _, err := svc.Set(ctx, "residual", nil, strptr("http://img/old.png")); err != nil {
		t.Fatalf("seed set: %v", err)
	}

	next := map[string]models.Slot{
		"fresh": {ImageURL: strptr("http://img/new.png")},
	}
	got, err := svc.ReplaceAll(ctx, next, nil)
	if err != nil {
		t.Fatalf("replace all: %v", err)
	}

	if _, ok := got["residual"]; ok {
		t.Fatal("replace must not merge: residual slot survived")
	}
	if _, ok := got["fresh"]; !ok {
		t.Fatal("replacement slot missing")
	}

	// ReplaceAll emits no per-slot events; only the seed Set broadcast.
	if events := b.recorded(); len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}
