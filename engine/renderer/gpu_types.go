package renderer

import (
	"unsafe"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUInstance is the per-instance record read by the mesh shaders.
// Size: 80 bytes (mat4x4<f32> + vec4<f32>).
type GPUInstance struct {
	Model [16]float32 // offset  0: model matrix, column-major
	Color [4]float32  // offset 64: RGBA colour
}

// NewGPUInstance builds an instance record.
//
// Parameters:
//   - model: the model matrix
//   - color: the material colour
//
// Returns:
//   - GPUInstance: the record
func NewGPUInstance(model mgl32.Mat4, color common.Color) GPUInstance {
	return GPUInstance{Model: model, Color: color}
}

// Size returns the size of the GPUInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}
