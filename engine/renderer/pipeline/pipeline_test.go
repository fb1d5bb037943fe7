package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/cubefall/engine/renderer/shader"
)

func TestNewPipelineDefaults(t *testing.T) {
	s := shader.MeshWGSL()
	p := NewPipeline("mesh", s)

	assert.Equal(t, "mesh", p.PipelineKey())
	assert.Same(t, s, p.Shader())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Nil(t, p.BlendState())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Equal(t, uint32(1), p.SampleCount())
	assert.Nil(t, p.RenderPipeline())
}

func TestPipelineOptions(t *testing.T) {
	p := NewPipeline("mesh", shader.MeshWGSL(),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithBlendEnabled(true),
		WithCullMode(wgpu.CullModeBack),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
		WithSampleCount(4),
	)

	assert.False(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, p.BlendState().Color.SrcFactor)
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskRed, p.WriteMask())
	assert.Equal(t, uint32(4), p.SampleCount())

	assert.Equal(t, uint32(1), NewPipeline("k", shader.MeshWGSL(), WithSampleCount(0)).SampleCount())
}

func TestRenderPipelineDescriptor(t *testing.T) {
	s := shader.MeshWGSL()
	p := NewPipeline("mesh", s, WithSampleCount(4))

	desc := p.RenderPipelineDescriptor(nil, nil, wgpu.TextureFormatBGRA8Unorm)
	require.NotNil(t, desc)
	assert.Equal(t, "mesh Render Pipeline", desc.Label)
	assert.Equal(t, s.VertexEntryPoint(), desc.Vertex.EntryPoint)
	assert.Equal(t, s.VertexLayouts(), desc.Vertex.Buffers)

	require.NotNil(t, desc.Fragment)
	assert.Equal(t, s.FragmentEntryPoint(), desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)

	assert.Equal(t, uint32(4), desc.Multisample.Count)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestRenderPipelineDescriptorWithoutDepthTest(t *testing.T) {
	p := NewPipeline("overlay", shader.MeshWGSL(), WithDepthTestEnabled(false), WithDepthWriteEnabled(false))

	desc := p.RenderPipelineDescriptor(nil, nil, wgpu.TextureFormatBGRA8Unorm)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.CompareFunctionAlways, desc.DepthStencil.DepthCompare)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
}

func TestReleaseWithoutGPUPipeline(t *testing.T) {
	p := NewPipeline("mesh", shader.MeshWGSL())
	p.Release()
	p.SetRenderPipeline(nil)
	assert.Nil(t, p.RenderPipeline())
}
