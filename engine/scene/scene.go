package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/mesh"
)

var (
	// ErrNilMesh is returned when a nil mesh is added to a scene.
	ErrNilMesh = errors.New("scene: mesh is nil")

	// ErrDuplicateMesh is returned when a mesh that is already a member is added again.
	ErrDuplicateMesh = errors.New("scene: mesh already added")
)

// Scene is a flat container of meshes viewed through a single camera.
// Every mesh is a member at most once. Iteration order is insertion order.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera, never nil
	Camera() camera.Camera

	// SetCamera replaces the scene's camera. A nil camera is ignored.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Add inserts meshes into the scene. The batch is validated first, so on error no mesh from
	// the batch has been added.
	//
	// Parameters:
	//   - meshes: the meshes to add
	//
	// Returns:
	//   - error: ErrNilMesh or ErrDuplicateMesh (wrapped with the offending ID)
	Add(meshes ...mesh.Mesh) error

	// Get returns the member with the given ID, or nil.
	//
	// Parameters:
	//   - id: the mesh ID
	//
	// Returns:
	//   - mesh.Mesh: the mesh or nil
	Get(id uint64) mesh.Mesh

	// Remove drops the member with the given ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the mesh ID
	Remove(id uint64)

	// Count returns the number of member meshes.
	//
	// Returns:
	//   - int: the mesh count
	Count() int

	// Meshes returns a snapshot of the members in insertion order.
	//
	// Returns:
	//   - []mesh.Mesh: a copy of the member list
	Meshes() []mesh.Mesh

	// Clear removes every mesh. The camera is kept.
	Clear()
}

type scene struct {
	mu *sync.RWMutex

	name string
	cam  camera.Camera

	meshes   []mesh.Mesh
	registry map[uint64]int // mesh ID -> index in meshes
}

var _ Scene = &scene{}

// NewScene creates an empty scene viewed through cam. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		registry: make(map[uint64]int),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Add(meshes ...mesh.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uint64]struct{}, len(meshes))
	for _, m := range meshes {
		if m == nil {
			return ErrNilMesh
		}
		_, member := s.registry[m.ID()]
		_, batched := seen[m.ID()]
		if member || batched {
			return fmt.Errorf("%w: id %d", ErrDuplicateMesh, m.ID())
		}
		seen[m.ID()] = struct{}{}
	}

	for _, m := range meshes {
		s.registry[m.ID()] = len(s.meshes)
		s.meshes = append(s.meshes, m)
	}
	return nil
}

func (s *scene) Get(id uint64) mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.registry[id]
	if !ok {
		return nil
	}
	return s.meshes[idx]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	s.meshes = slices.Delete(s.meshes, idx, idx+1)
	for i := idx; i < len(s.meshes); i++ {
		s.registry[s.meshes[i].ID()] = i
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

func (s *scene) Meshes() []mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.meshes)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = nil
	s.registry = make(map[uint64]int)
}
