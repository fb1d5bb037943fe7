package renderer

import (
	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeGL selects the OpenGL 4.1 core rendering backend. The window must be created
	// with window.ClientAPIOpenGL.
	BackendTypeGL
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeGL:
		return "gl"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the GPU API seam of the Renderer. A frame is driven as
// WriteInstances, BeginFrame, any number of DrawInstanced, EndFrame, Present.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swap chain and depth attachments at the given pixel size.
	ConfigureSurface(width, height int) error

	// SetPresentMode selects VSync or uncapped presentation. Takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the colour attachment is cleared to at BeginFrame.
	SetClearColor(c common.Color)

	// WriteInstances uploads the per-instance data for the coming frame, growing the
	// instance buffer if needed.
	WriteInstances(instances []GPUInstance) error

	// BeginFrame acquires the next surface image, uploads the camera and starts a cleared pass.
	BeginFrame(cam camera.Camera) error

	// DrawInstanced draws count instances of geo, reading instance data from
	// [first, first+count) of the last WriteInstances upload. Geometry buffers are created on
	// first use.
	DrawInstanced(geo geometry.Geometry, first, count uint32) error

	// EndFrame finishes the pass and submits it.
	EndFrame() error

	// Present shows the submitted frame.
	Present()

	// DiscardFrame abandons the frame in progress without presenting it and releases the
	// acquired surface image, so the next BeginFrame can acquire a new one. A no-op between frames.
	DiscardFrame()

	// Release frees every GPU resource owned by the backend.
	Release()
}
