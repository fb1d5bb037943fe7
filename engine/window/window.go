package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ClientAPI selects which graphics API context, if any, the window creates.
type ClientAPI int

const (
	// ClientAPINone creates no context; the surface is driven by WebGPU.
	ClientAPINone ClientAPI = iota

	// ClientAPIOpenGL creates an OpenGL 4.1 core profile context.
	ClientAPIOpenGL
)

// Window is the display surface: a single native window that reports resizes and drives the
// main loop. All methods must be called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	// Sizes are logical (screen coordinates); multiply by PixelRatio for pixels.
	//
	// Parameters:
	//   - callback: function receiving the new width and height
	SetResizeCallback(callback func(width, height int))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// MakeContextCurrent binds the window's OpenGL context to the calling thread.
	// It is a no-op for windows created with ClientAPINone.
	MakeContextCurrent()

	// SwapBuffers presents the OpenGL back buffer. No-op without an OpenGL context.
	SwapBuffers()

	// SetSwapInterval sets the number of vertical blanks to wait before swapping (0 = uncapped).
	// No-op without an OpenGL context.
	//
	// Parameters:
	//   - interval: the swap interval
	SetSwapInterval(interval int)

	// PixelRatio returns the ratio of framebuffer pixels to logical window size.
	//
	// Returns:
	//   - float32: the device pixel ratio (1 on standard displays)
	PixelRatio() float32

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current logical window width.
	//
	// Returns:
	//   - int: width in screen coordinates
	Width() int

	// Height returns the current logical window height.
	//
	// Returns:
	//   - int: height in screen coordinates
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// clientAPI selects the graphics context created with the window.
	clientAPI ClientAPI

	// minWidth, minHeight, maxWidth and maxHeight bound interactive resizing. Zero means unbounded.
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	// width and height are the logical window size.
	width  int
	height int

	// fbWidth and fbHeight are the framebuffer size in pixels.
	fbWidth  int
	fbHeight int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onResize func(width, height int)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. Failure to reach a display is returned as an error.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

// newEngineWindow applies defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "Default Window Title",
		clientAPI: ClientAPINone,
		minWidth:  200,
		minHeight: 150,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.fbWidth, w.fbHeight = w.width, w.height
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) MakeContextCurrent() {
	platformMakeContextCurrent(w)
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) SetSwapInterval(interval int) {
	platformSetSwapInterval(w, interval)
}

func (w *engineWindow) PixelRatio() float32 {
	if w.width <= 0 || w.fbWidth <= 0 {
		return 1
	}
	return float32(w.fbWidth) / float32(w.width)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleResize records a new logical and framebuffer size and notifies the resize callback.
func (w *engineWindow) handleResize(width, height, fbWidth, fbHeight int) {
	w.width, w.height = width, height
	w.fbWidth, w.fbHeight = fbWidth, fbHeight
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
