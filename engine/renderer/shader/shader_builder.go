package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option for configuring a Shader.
type ShaderBuilderOption func(*shader)

// WithEntryPoints sets the vertex and fragment entry point names.
//
// Parameters:
//   - vertex: the vertex stage entry point
//   - fragment: the fragment stage entry point
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithEntryPoints(vertex, fragment string) ShaderBuilderOption {
	return func(s *shader) {
		s.vertexEntryPoint = vertex
		s.fragmentEntryPoint = fragment
	}
}

// WithBindGroupLayouts sets the bind group layout descriptors, one per group in group order.
//
// Parameters:
//   - descs: the descriptors
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithBindGroupLayouts(descs ...wgpu.BindGroupLayoutDescriptor) ShaderBuilderOption {
	return func(s *shader) {
		s.bindGroupLayoutDescriptors = descs
	}
}

// WithVertexLayouts sets the vertex buffer layouts, one per vertex buffer slot.
//
// Parameters:
//   - layouts: the layouts
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) ShaderBuilderOption {
	return func(s *shader) {
		s.vertexLayouts = layouts
	}
}
