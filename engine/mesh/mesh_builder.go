package mesh

import "github.com/go-gl/mathgl/mgl32"

// MeshBuilderOption is a functional option for configuring a Mesh in NewMesh.
type MeshBuilderOption func(*mesh)

// WithPosition sets the initial position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithPosition(x, y, z float32) MeshBuilderOption {
	return func(m *mesh) {
		m.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles in radians
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithRotation(rx, ry, rz float32) MeshBuilderOption {
	return func(m *mesh) {
		m.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithScale(sx, sy, sz float32) MeshBuilderOption {
	return func(m *mesh) {
		m.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithUniformScale sets the same scale factor on all three axes.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithUniformScale(s float32) MeshBuilderOption {
	return WithScale(s, s, s)
}

// WithVisible sets the initial visibility.
//
// Parameters:
//   - v: true to draw the mesh
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithVisible(v bool) MeshBuilderOption {
	return func(m *mesh) {
		m.visible.Store(v)
	}
}
