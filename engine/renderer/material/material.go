package material

import (
	"sync"

	"github.com/Carmen-Shannon/cubefall/common"
)

// material is the implementation of the Material interface.
type material struct {
	mu    *sync.Mutex
	name  string
	color common.Color
}

// Material describes how the surface of a mesh is shaded. Materials are unlit: every fragment
// takes the material colour. A single Material is typically shared by many meshes, so changing
// its colour recolours all of them on the next frame.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Color retrieves the RGBA surface colour.
	//
	// Returns:
	//   - common.Color: the colour
	Color() common.Color

	// SetColor replaces the surface colour.
	//
	// Parameters:
	//   - c: the new colour
	SetColor(c common.Color)
}

var _ Material = &material{}

// NewBasicMaterial creates an unlit material. The default colour is opaque white.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the new material
func NewBasicMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mu:    &sync.Mutex{},
		name:  "basic",
		color: common.Color{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Color() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *material) SetColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = c
}
