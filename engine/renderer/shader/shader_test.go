package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshWGSL(t *testing.T) {
	s := MeshWGSL()

	assert.Equal(t, MeshShaderKey, s.Key())
	assert.Equal(t, LanguageWGSL, s.Language())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
	assert.Contains(t, s.VertexSource(), "@vertex")
	assert.Contains(t, s.FragmentSource(), "@fragment")

	require.Len(t, s.BindGroupLayoutDescriptors(), 2)
	cam := s.BindGroupLayoutDescriptor(CameraGroup)
	require.Len(t, cam.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cam.Entries[0].Buffer.Type)
	inst := s.BindGroupLayoutDescriptor(InstanceGroup)
	require.Len(t, inst.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, inst.Entries[0].Buffer.Type)
	assert.Empty(t, s.BindGroupLayoutDescriptor(5).Entries)

	require.Len(t, s.VertexLayouts(), 1)
	assert.Equal(t, uint64(32), s.VertexLayouts()[0].ArrayStride)
}

func TestMeshGLSL(t *testing.T) {
	s := MeshGLSL()

	assert.Equal(t, LanguageGLSL, s.Language())
	assert.Equal(t, "main", s.VertexEntryPoint())
	assert.Contains(t, s.VertexSource(), "#version 410 core")
	assert.Contains(t, s.VertexSource(), ViewProjUniform)
	assert.Contains(t, s.FragmentSource(), "frag_color")
	assert.Empty(t, s.BindGroupLayoutDescriptors())
	assert.Equal(t, "glsl", s.Language().String())
}
