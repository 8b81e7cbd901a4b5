package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"slotcast/internal/api"
	"slotcast/internal/models"
	"slotcast/internal/store"
)

// SceneService provides scene CRUD plus the two cross-entity operations:
// Load (scene snapshot onto the slot registry) and Capture (registry
// snapshot into a scene). Scenes live in the store's scenes document;
// the mutex serializes read-modify-write cycles on it.
type SceneService struct {
	mu          sync.Mutex
	store       store.Store
	slots       *SlotService
	broadcaster Broadcaster
}

// NewSceneService constructs a SceneService.
func NewSceneService(st store.Store, slots *SlotService, b Broadcaster) *SceneService {
	if b == nil {
		b = noopBroadcaster{}
	}
	return &SceneService{store: st, slots: slots, broadcaster: b}
}

// List returns all scenes in insertion order.
func (s *SceneService) List(ctx context.Context) ([]models.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readScenes(ctx)
}

// Get returns one scene by id.
func (s *SceneService) Get(ctx context.Context, id int64) (models.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.readScenes(ctx)
	if err != nil {
		return models.Scene{}, err
	}
	for _, scene := range scenes {
		if scene.ID == id {
			return scene.Clone(), nil
		}
	}
	return models.Scene{}, sceneNotFound(id)
}

// Create validates the request and appends a new scene.
func (s *SceneService) Create(ctx context.Context, req api.SceneCreateRequest) (models.Scene, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Scene{}, badRequestCode(fmt.Errorf("scene name is required"), ErrCodeMissingRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.readScenes(ctx)
	if err != nil {
		return models.Scene{}, err
	}

	now := time.Now().UTC()
	scene := models.Scene{
		ID:          store.NextID(),
		Name:        name,
		Description: req.Description,
		Slots:       models.CloneSlots(req.Slots),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	scenes = append(scenes, scene)
	if err := s.writeScenes(ctx, scenes); err != nil {
		return models.Scene{}, err
	}
	return scene.Clone(), nil
}

// Update merges only the provided fields and refreshes updatedAt. The scene
// id is immutable. A provided slots mapping is a complete replacement
// snapshot, never a merge.
func (s *SceneService) Update(ctx context.Context, id int64, req api.SceneUpdateRequest) (models.Scene, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return models.Scene{}, badRequestCode(fmt.Errorf("scene name is required"), ErrCodeMissingRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, id, req)
}

// Delete removes a scene. It never touches the slot registry: deleting a
// scene has no effect on what is currently displayed.
func (s *SceneService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.readScenes(ctx)
	if err != nil {
		return err
	}

	kept := scenes[:0]
	for _, scene := range scenes {
		if scene.ID != id {
			kept = append(kept, scene)
		}
	}
	if len(kept) == len(scenes) {
		return sceneNotFound(id)
	}
	return s.writeScenes(ctx, kept)
}

// Load applies a scene's stored snapshot onto the slot registry as a full
// replacement: loading scene B leaves no residual slots from scene A. One
// batched scene:loaded event is broadcast, carrying both the scene's own
// mapping and the complete post-load registry snapshot.
func (s *SceneService) Load(ctx context.Context, id int64) (api.SceneLoadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenes, err := s.readScenes(ctx)
	if err != nil {
		return api.SceneLoadResponse{}, err
	}

	var scene *models.Scene
	for i := range scenes {
		if scenes[i].ID == id {
			scene = &scenes[i]
			break
		}
	}
	if scene == nil {
		return api.SceneLoadResponse{}, sceneNotFound(id)
	}

	// Broadcast from inside ReplaceAll, while the registry lock is still
	// held. A slot write that lands after the load must also enqueue its
	// slot:updated after the scene:loaded, or clients applying events in
	// arrival order would finish on the pre-write snapshot.
	allSlots, err := s.slots.ReplaceAll(ctx, scene.Slots, func(allSlots map[string]models.Slot) {
		s.broadcaster.Broadcast(EventSceneLoaded, SceneLoadedPayload{
			SceneID:   scene.ID,
			SceneName: scene.Name,
			Slots:     models.CloneSlots(scene.Slots),
			AllSlots:  allSlots,
		})
	})
	if err != nil {
		return api.SceneLoadResponse{}, err
	}

	return api.SceneLoadResponse{
		SceneID:      scene.ID,
		SceneName:    scene.Name,
		SlotsUpdated: len(scene.Slots),
		AllSlots:     allSlots,
	}, nil
}

// Capture snapshots the live registry into the scene, overwriting its
// stored mapping in place. No new scene is created and nothing is broadcast:
// capturing changes what is saved, not what is displayed.
func (s *SceneService) Capture(ctx context.Context, id int64) (api.SceneCaptureResponse, error) {
	snapshot := s.slots.All()

	s.mu.Lock()
	defer s.mu.Unlock()

	scene, err := s.update(ctx, id, api.SceneUpdateRequest{Slots: &snapshot})
	if err != nil {
		return api.SceneCaptureResponse{}, err
	}

	return api.SceneCaptureResponse{
		SceneID:       scene.ID,
		SceneName:     scene.Name,
		SlotsCaptured: len(snapshot),
		Slots:         models.CloneSlots(snapshot),
	}, nil
}

// update performs the merge without taking the lock. Callers must hold s.mu.
func (s *SceneService) update(ctx context.Context, id int64, req api.SceneUpdateRequest) (models.Scene, error) {
	scenes, err := s.readScenes(ctx)
	if err != nil {
		return models.Scene{}, err
	}

	for i := range scenes {
		if scenes[i].ID != id {
			continue
		}
		if req.Name != nil {
			scenes[i].Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			scenes[i].Description = *req.Description
		}
		if req.Slots != nil {
			scenes[i].Slots = models.CloneSlots(*req.Slots)
		}
		scenes[i].UpdatedAt = time.Now().UTC()

		if err := s.writeScenes(ctx, scenes); err != nil {
			return models.Scene{}, err
		}
		return scenes[i].Clone(), nil
	}
	return models.Scene{}, sceneNotFound(id)
}

func (s *SceneService) readScenes(ctx context.Context) ([]models.Scene, error) {
	scenes, err := s.store.ReadScenes(ctx)
	if err != nil {
		return nil, storeFailure(fmt.Errorf("read scenes: %w", err))
	}
	return scenes, nil
}

func (s *SceneService) writeScenes(ctx context.Context, scenes []models.Scene) error {
	if err := s.store.WriteScenes(ctx, scenes); err != nil {
		return storeFailure(fmt.Errorf("persist scenes: %w", err))
	}
	return nil
}

func sceneNotFound(id int64) error {
	return notFoundCode(fmt.Errorf("scene %d not found", id), ErrCodeSceneNotFound)
}
