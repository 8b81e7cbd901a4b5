package server

import (
	"context"
	"testing"

	"slotcast/internal/api"
	"slotcast/internal/models"
)

func newSceneServiceForTest(t *testing.T, b Broadcaster) (*SceneService, *SlotService) {
	t.Helper()
	slots, st := newSlotServiceForTest(t, b)
	return NewSceneService(st, slots, b), slots
}

func TestSceneServiceCreateRequiresName(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	tests := []string{"", "   "}
	for _, name := range tests {
		if _, err := svc.Create(ctx, api.SceneCreateRequest{Name: name}); err == nil {
			t.Fatalf("expected error for name %q", name)
		}
	}
}

func TestSceneServiceCreateAndGet(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.SceneCreateRequest{
		Name:        "  Opening  ",
		Description: "pre-show state",
		Slots: map[string]models.Slot{
			"main": {ImageURL: strptr("http://img/open.png")},
		},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("expected positive id, got %d", created.ID)
	}
	if created.Name != "Opening" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("timestamps: created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	if got.Slots["main"].ImageURL == nil || *got.Slots["main"].ImageURL != "http://img/open.png" {
		t.Fatalf("scene slots not stored: %+v", got.Slots)
	}
}

func TestSceneServiceIDsAreUnique(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		scene, err := svc.Create(ctx, api.SceneCreateRequest{Name: "burst"})
		if err != nil {
			t.Fatalf("create scene %d: %v", i, err)
		}
		if seen[scene.ID] {
			t.Fatalf("duplicate scene id %d", scene.ID)
		}
		seen[scene.ID] = true
	}
}

func TestSceneServiceUpdateMergesProvidedFieldsOnly(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.SceneCreateRequest{
		Name:        "Act One",
		Description: "original",
		Slots:       map[string]models.Slot{"main": {ImageURL: strptr("http://img/a.png")}},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, api.SceneUpdateRequest{Name: strptr("Act One (final)")})
	if err != nil {
		t.Fatalf("update scene: %v", err)
	}
	if updated.Name != "Act One (final)" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Description != "original" {
		t.Fatalf("omitted description must be untouched, got %q", updated.Description)
	}
	if len(updated.Slots) != 1 {
		t.Fatalf("omitted slots must be untouched, got %+v", updated.Slots)
	}
	if updated.ID != created.ID {
		t.Fatalf("scene id must be immutable: %d != %d", updated.ID, created.ID)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updatedAt went backwards: %v < %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestSceneServiceUpdateRejectsBlankName(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.SceneCreateRequest{Name: "Keep"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, api.SceneUpdateRequest{Name: strptr("  ")}); err == nil {
		t.Fatal("expected blank provided name to be rejected")
	}
}

func TestSceneServiceDelete(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.SceneCreateRequest{Name: "Disposable"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete scene: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err == nil {
		t.Fatal("deleted scene still retrievable")
	}
	if err := svc.Delete(ctx, created.ID); err == nil {
		t.Fatal("second delete should report not found")
	}
}

func TestSceneServiceDeleteDoesNotTouchSlots(t *testing.T) {
	svc, slots := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, api.SceneCreateRequest{Name: "Live"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if _, err := svc.Load(ctx, created.ID); err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if _, err := slots.Set(ctx, "main", nil, strptr("http://img/live.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete scene: %v", err)
	}

	got := slots.Get("main")
	if got.ImageURL == nil || *got.ImageURL != "http://img/live.png" {
		t.Fatalf("deleting a scene changed the display: %+v", got)
	}
}

func TestSceneServiceLoadReplacesWholeRegistry(t *testing.T) {
	b := &recordingBroadcaster{}
	svc, slots := newSceneServiceForTest(t, b)
	ctx := context.Background()

	if _, err := slots.Set(ctx, "residual", nil, strptr("http://img/old.png")); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	scene, err := svc.Create(ctx, api.SceneCreateRequest{
		Name:  "Interval",
		Slots: map[string]models.Slot{"main": {ImageURL: strptr("http://img/interval.png")}},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	result, err := svc.Load(ctx, scene.ID)
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if result.SlotsUpdated != 1 {
		t.Fatalf("expected 1 slot updated, got %d", result.SlotsUpdated)
	}
	if _, ok := result.AllSlots["residual"]; ok {
		t.Fatal("load must replace, not merge: residual slot survived")
	}

	if live := slots.Get("residual"); !live.IsEmpty() {
		t.Fatalf("residual slot still set after load: %+v", live)
	}

	events := b.recorded()
	last := events[len(events)-1]
	if last.event != EventSceneLoaded {
		t.Fatalf("expected %s, got %s", EventSceneLoaded, last.event)
	}
	payload, ok := last.data.(SceneLoadedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", last.data)
	}
	if payload.SceneID != scene.ID || payload.SceneName != "Interval" {
		t.Fatalf("wrong scene in event: %+v", payload)
	}
	if _, ok := payload.AllSlots["residual"]; ok {
		t.Fatal("event snapshot must reflect the post-load registry")
	}
}

type broadcasterFunc func(event string, data any)

func (f broadcasterFunc) Broadcast(event string, data any) { f(event, data) }

func TestSceneServiceLoadBroadcastsBeforeReleasingRegistry(t *testing.T) {
	var (
		slots      *SlotService
		heldOnLoad bool
	)
	b := broadcasterFunc(func(event string, data any) {
		if event != EventSceneLoaded {
			return
		}
		// Slot writes take the registry lock before broadcasting. If the
		// lock were free here, a concurrent write could enqueue its
		// slot:updated ahead of this scene:loaded and clients applying
		// events in arrival order would finish on the stale snapshot.
		if slots.mu.TryLock() {
			slots.mu.Unlock()
			return
		}
		heldOnLoad = true
	})
	svc, slotSvc := newSceneServiceForTest(t, b)
	slots = slotSvc
	ctx := context.Background()

	scene, err := svc.Create(ctx, api.SceneCreateRequest{
		Name:  "Opening",
		Slots: map[string]models.Slot{"main": {ImageURL: strptr("http://img/opening.png")}},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	if _, err := svc.Load(ctx, scene.ID); err != nil {
		t.Fatalf("load scene: %v", err)
	}
	if !heldOnLoad {
		t.Fatal("scene:loaded must be broadcast while the registry lock is held")
	}
}

func TestSceneServiceLoadIsIdempotent(t *testing.T) {
	svc, slots := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	scene, err := svc.Create(ctx, api.SceneCreateRequest{
		Name:  "Steady",
		Slots: map[string]models.Slot{"main": {ImageURL: strptr("http://img/s.png")}},
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	if _, err := svc.Load(ctx, scene.ID); err != nil {
		t.Fatalf("first load: %v", err)
	}
	first := slots.All()
	if _, err := svc.Load(ctx, scene.ID); err != nil {
		t.Fatalf("second load: %v", err)
	}
	second := slots.All()

	if len(first) != len(second) {
		t.Fatalf("registry changed between identical loads: %d vs %d", len(first), len(second))
	}
	for id, slot := range first {
		got := second[id]
		if (slot.ImageURL == nil) != (got.ImageURL == nil) {
			t.Fatalf("slot %q diverged between loads", id)
		}
	}
}

func TestSceneServiceLoadUnknownScene(t *testing.T) {
	svc, _ := newSceneServiceForTest(t, nil)

	_, err := svc.Load(context.Background(), 999999999)
	if err == nil {
		t.Fatal("expected not found")
	}
	if status := httpStatusFromError(err); status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestSceneServiceCaptureThenLoadRoundTrips(t *testing.T) {
	svc, slots := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	scene, err := svc.Create(ctx, api.SceneCreateRequest{Name: "Snapshot"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}

	if _, err := slots.Set(ctx, "left", nil, strptr("http://img/l.png")); err != nil {
		t.Fatalf("set left: %v", err)
	}
	if _, err := slots.Set(ctx, "right", strptr("7"), strptr("http://img/r.png")); err != nil {
		t.Fatalf("set right: %v", err)
	}

	captured, err := svc.Capture(ctx, scene.ID)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if captured.SlotsCaptured != 2 {
		t.Fatalf("expected 2 slots captured, got %d", captured.SlotsCaptured)
	}

	// Capture overwrites in place, it never creates a new scene.
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("capture created a scene: %d scenes", len(all))
	}

	// Disturb the registry, then load the capture back.
	if _, err := slots.Clear(ctx, "left"); err != nil {
		t.Fatalf("clear left: %v", err)
	}
	if _, err := slots.Set(ctx, "stray", nil, strptr("http://img/stray.png")); err != nil {
		t.Fatalf("set stray: %v", err)
	}

	result, err := svc.Load(ctx, scene.ID)
	if err != nil {
		t.Fatalf("load capture: %v", err)
	}
	if _, ok := result.AllSlots["stray"]; ok {
		t.Fatal("stray slot survived the load")
	}
	left := slots.Get("left")
	if left.ImageURL == nil || *left.ImageURL != "http://img/l.png" {
		t.Fatalf("captured state not restored: %+v", left)
	}
}

func TestSceneServiceCaptureSnapshotIsDetached(t *testing.T) {
	svc, slots := newSceneServiceForTest(t, nil)
	ctx := context.Background()

	scene, err := svc.Create(ctx, api.SceneCreateRequest{Name: "Frozen"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if _, err := slots.Set(ctx, "main", nil, strptr("http://img/at-capture.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}
	if _, err := svc.Capture(ctx, scene.ID); err != nil {
		t.Fatalf("capture: %v", err)
	}

	// Later slot changes must not leak into the stored scene.
	if _, err := slots.Set(ctx, "main", nil, strptr("http://img/later.png")); err != nil {
		t.Fatalf("set slot: %v", err)
	}

	got, err := svc.Get(ctx, scene.ID)
	if err != nil {
		t.Fatalf("get scene: %v", err)
	}
	if url := got.Slots["main"].ImageURL; url == nil || *url != "http://img/at-capture.png" {
		t.Fatalf("stored scene drifted after capture: %+v", got.Slots["main"])
	}
}
