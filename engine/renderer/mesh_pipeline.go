package renderer

import (
	"github.com/Carmen-Shannon/cubefall/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/shader"
)

// newMeshPipeline describes how every backend draws instanced meshes: depth tested, opaque,
// no culling so that faces stay visible at any rotation.
func newMeshPipeline(s shader.Shader, sampleCount MSAASampleCount) pipeline.Pipeline {
	return pipeline.NewPipeline(s.Key(), s,
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithBlendEnabled(false),
		pipeline.WithSampleCount(uint32(sampleCount)),
	)
}
