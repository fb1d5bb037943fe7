package material

import "github.com/Carmen-Shannon/cubefall/common"

// MaterialBuilderOption is a functional option for configuring a material.
type MaterialBuilderOption func(*material)

// WithName sets the material name.
//
// Parameters:
//   - name: the material identifier
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor sets the material colour.
//
// Parameters:
//   - c: the RGBA colour
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}
