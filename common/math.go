package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// webGPUDepthRemap maps OpenGL clip-space depth [-1, 1] onto the WebGPU range [0, 1].
var webGPUDepthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// ViewportHeight returns the world-space height visible through a perspective camera with the given
// vertical field of view at the given distance in front of it.
//
// Parameters:
//   - fovDegrees: the vertical field of view in degrees
//   - distance: distance from the camera along its view axis
//
// Returns:
//   - float32: the visible height at that distance
func ViewportHeight(fovDegrees, distance float32) float32 {
	return 2 * math32.Tan(DegToRad(fovDegrees)/2) * distance
}

// WebGPUProjection converts a projection matrix built for OpenGL clip space into one that writes
// WebGPU depth values.
//
// Parameters:
//   - proj: a projection matrix producing depth in [-1, 1]
//
// Returns:
//   - mgl32.Mat4: the same projection producing depth in [0, 1]
func WebGPUProjection(proj mgl32.Mat4) mgl32.Mat4 {
	return webGPUDepthRemap.Mul4(proj)
}

// ModelMatrix composes a model matrix as T * Rx * Ry * Rz * S.
// Rotation angles are in radians and are applied in X, Y, Z order.
//
// Parameters:
//   - position: translation
//   - rotation: Euler angles in radians
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed column-major model matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(position[0], position[1], position[2])
	m = m.Mul4(mgl32.HomogRotate3DX(rotation[0]))
	m = m.Mul4(mgl32.HomogRotate3DY(rotation[1]))
	m = m.Mul4(mgl32.HomogRotate3DZ(rotation[2]))
	return m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}
