package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"slotcast/internal/blobstore"
	"slotcast/internal/models"
	"slotcast/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	st, err := store.OpenFileStore(dir)
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	uploads, err := blobstore.NewLocalUploads(dir + "/uploads")
	if err != nil {
		t.Fatalf("open uploads: %v", err)
	}

	srv, err := New(context.Background(), st, uploads, Options{
		Addr:           "127.0.0.1:0",
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 1 << 20,
	}, slog.Default())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func newSlotServiceForTest(t *testing.T, b Broadcaster) (*SlotService, store.Store) {
	t.Helper()

	st, err := store.OpenFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	svc, err := NewSlotService(context.Background(), st, b)
	if err != nil {
		t.Fatalf("new slot service: %v", err)
	}
	return svc, st
}

func strptr(v string) *string {
	return &v
}

// recordingBroadcaster captures events in order for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	event string
	data  any
}

func (b *recordingBroadcaster) Broadcast(event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{event: event, data: data})
}

func (b *recordingBroadcaster) recorded() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// failingStore wraps a real store and fails writes on demand.
type failingStore struct {
	store.Store
	failWrites bool
}

func (f *failingStore) WriteSlots(ctx context.Context, slots map[string]models.Slot) error {
	if f.failWrites {
		return fmt.Errorf("disk full")
	}
	return f.Store.WriteSlots(ctx, slots)
}

func (f *failingStore) WriteScenes(ctx context.Context, scenes []models.Scene) error {
	if f.failWrites {
		return fmt.Errorf("disk full")
	}
	return f.Store.WriteScenes(ctx, scenes)
}
