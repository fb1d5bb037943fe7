package scene

import "github.com/Carmen-Shannon/cubefall/engine/mesh"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCapacity preallocates room for n meshes.
//
// Parameters:
//   - n: expected number of meshes
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.meshes = make([]mesh.Mesh, 0, n)
			s.registry = make(map[uint64]int, n)
		}
	}
}
