package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestViewportHeight(t *testing.T) {
	// tan(45deg) == 1, so a 90 degree fov sees 2*distance.
	assert.InDelta(t, 10.0, ViewportHeight(90, 5), 1e-5)
	assert.InDelta(t, 7.6732, ViewportHeight(75, 5), 1e-3)
}

func TestWebGPUProjectionDepthRange(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(75), 1, 0.1, 1000)
	remapped := WebGPUProjection(proj)

	near := remapped.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := remapped.Mul4x1(mgl32.Vec4{0, 0, -1000, 1})

	assert.InDelta(t, 0.0, near.Z()/near.W(), 1e-4)
	assert.InDelta(t, 1.0, far.Z()/far.W(), 1e-4)
}

func TestModelMatrix(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{3, 4, 5, 1}, p)

	rot := ModelMatrix(mgl32.Vec3{}, mgl32.Vec3{0, 0, mgl32.DegToRad(90)}, mgl32.Vec3{1, 1, 1})
	q := rot.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0.0, q.X(), 1e-6)
	assert.InDelta(t, 1.0, q.Y(), 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}
