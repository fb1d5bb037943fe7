package geometry

import (
	bgp "github.com/Carmen-Shannon/cubefall/engine/renderer/bind_group_provider"
)

// GeometryBuilderOption is a functional option for configuring a Geometry.
type GeometryBuilderOption func(*geometry)

// WithName sets the geometry name, also used to label its GPU buffers.
//
// Parameters:
//   - name: the geometry name
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithName(name string) GeometryBuilderOption {
	return func(g *geometry) {
		g.name = name
	}
}

// WithMeshProvider sets the provider that will hold the geometry's GPU buffers.
//
// Parameters:
//   - p: the bind group provider
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithMeshProvider(p bgp.BindGroupProvider) GeometryBuilderOption {
	return func(g *geometry) {
		g.meshProvider = p
	}
}
