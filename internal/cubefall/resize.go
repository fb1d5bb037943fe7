package cubefall

import "github.com/Carmen-Shannon/cubefall/common"

// ResizeSource delivers window size changes in logical pixels.
type ResizeSource interface {
	SetResizeCallback(callback func(width, height int))
}

// HandleResize records the new window size, resizes the renderer and refreshes the camera
// projection for the new aspect ratio. Non-positive sizes, as reported for a minimised window,
// are ignored.
//
// Parameters:
//   - ctx: the application context
//   - width: the new window width
//   - height: the new window height
func HandleResize(ctx *Context, width, height int) {
	if ctx == nil || width <= 0 || height <= 0 {
		return
	}

	ctx.Width, ctx.Height = width, height
	if ctx.Renderer != nil {
		ctx.Renderer.SetSize(width, height)
	}
	if ctx.Camera != nil {
		ctx.Camera.SetAspect(float32(width) / float32(height))
		ctx.Camera.UpdateProjection()
	}

	common.Logger().Debug("resized", "width", width, "height", height)
}

// Attach registers HandleResize on source for the lifetime of the process.
//
// Parameters:
//   - ctx: the application context
//   - source: the window or engine that reports resizes
func Attach(ctx *Context, source ResizeSource) {
	source.SetResizeCallback(func(width, height int) {
		HandleResize(ctx, width, height)
	})
}
