package mesh

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

var meshCount atomic.Uint64

type mesh struct {
	id       uint64
	visible  atomic.Bool
	geometry geometry.Geometry
	material material.Material

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
}

// Mesh is a renderable entity: a transform plus references to a shared Geometry and Material.
// Transforms are mutated in place by the owner; meshes are not safe for concurrent mutation,
// but concurrent reads (as performed by the renderer) are fine while nothing writes.
type Mesh interface {
	// ID returns the mesh's process-unique identifier.
	//
	// Returns:
	//   - uint64: the mesh ID
	ID() uint64

	// Visible reports whether the mesh is drawn.
	//
	// Returns:
	//   - bool: true if the renderer should draw this mesh
	Visible() bool

	// SetVisible shows or hides the mesh.
	//
	// Parameters:
	//   - v: the new visibility
	SetVisible(v bool)

	// Geometry returns the shared geometry.
	//
	// Returns:
	//   - geometry.Geometry: the geometry, never nil
	Geometry() geometry.Geometry

	// Material returns the shared material.
	//
	// Returns:
	//   - material.Material: the material, never nil
	Material() material.Material

	// Position returns the world-space position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// SetPosition sets the world-space position.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// Rotation returns the Euler rotation in radians, applied in X, Y, Z order.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles in radians
	Rotation() (rx, ry, rz float32)

	// SetRotation sets the Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - sx, sy, sz: scale factors
	Scale() (sx, sy, sz float32)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - sx, sy, sz: scale factors
	SetScale(sx, sy, sz float32)

	// ModelMatrix composes the current transform into a model matrix.
	//
	// Returns:
	//   - mgl32.Mat4: translation * rotation * scale
	ModelMatrix() mgl32.Mat4
}

var _ Mesh = &mesh{}

// NewMesh creates a visible mesh at the origin with unit scale.
// NewMesh panics if geo or mat is nil.
//
// Parameters:
//   - geo: the shared geometry
//   - mat: the shared material
//   - options: functional options applied in order
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(geo geometry.Geometry, mat material.Material, options ...MeshBuilderOption) Mesh {
	if geo == nil || mat == nil {
		panic("mesh: geometry and material are required")
	}
	m := &mesh{
		id:       meshCount.Add(1),
		geometry: geo,
		material: mat,
		scale:    mgl32.Vec3{1, 1, 1},
	}
	m.visible.Store(true)
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) ID() uint64 {
	return m.id
}

func (m *mesh) Visible() bool {
	return m.visible.Load()
}

func (m *mesh) SetVisible(v bool) {
	m.visible.Store(v)
}

func (m *mesh) Geometry() geometry.Geometry {
	return m.geometry
}

func (m *mesh) Material() material.Material {
	return m.material
}

func (m *mesh) Position() (x, y, z float32) {
	return m.position.Elem()
}

func (m *mesh) SetPosition(x, y, z float32) {
	m.position = mgl32.Vec3{x, y, z}
}

func (m *mesh) Rotation() (rx, ry, rz float32) {
	return m.rotation.Elem()
}

func (m *mesh) SetRotation(rx, ry, rz float32) {
	m.rotation = mgl32.Vec3{rx, ry, rz}
}

func (m *mesh) Scale() (sx, sy, sz float32) {
	return m.scale.Elem()
}

func (m *mesh) SetScale(sx, sy, sz float32) {
	m.scale = mgl32.Vec3{sx, sy, sz}
}

func (m *mesh) ModelMatrix() mgl32.Mat4 {
	return common.ModelMatrix(m.position, m.rotation, m.scale)
}
