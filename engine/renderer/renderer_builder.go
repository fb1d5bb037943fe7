package renderer

import "github.com/Carmen-Shannon/cubefall/common"

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the presentation mode for the renderer.
// When not specified, the backend default is used (VSync for OpenGL, uncapped for WebGPU).
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Ignored by the OpenGL backend.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the initial background colour. The default is opaque black.
//
// Parameters:
//   - c: the clear colour
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithPixelRatio overrides the device pixel ratio reported by the window.
//
// Parameters:
//   - ratio: the pixel ratio, capped at MaxPixelRatio
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPixelRatio(ratio float32) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPixelRatio = &ratio
	}
}

// WithWorkers sets how many workers build per-instance data each frame.
// Values < 1 are ignored. The default is one less than the number of CPUs.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n >= 1 {
			r.instanceWorkers = n
		}
	}
}
