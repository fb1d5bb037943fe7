package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/frame"
	"github.com/Carmen-Shannon/cubefall/engine/profiler"
	"github.com/Carmen-Shannon/cubefall/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// engine implements the Engine interface.
// All frame callbacks run on the window's message loop thread.
type engine struct {
	mu      sync.Mutex
	pending func()

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time

	onClose       func()
	quitRequested bool
	closeOnce     sync.Once
}

var _ Engine = &engine{}

// Engine owns the window message loop and runs one scheduled frame callback per loop iteration.
type Engine interface {
	frame.Scheduler

	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, nil for a headless engine
	Window() window.Window

	// SetResizeCallback registers the function called when the window is resized.
	// The callback receives logical window sizes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height
	SetResizeCallback(callback func(width, height int))

	// SetCloseCallback registers the function called once when the loop ends, before the window
	// is destroyed. Release GPU resources tied to the window surface here.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetCloseCallback(callback func())

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default); the present mode still paces frames.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run processes window messages until the window closes or Quit is called.
	// The window is closed before Run returns.
	//
	// Returns:
	//   - error: ErrNoWindow if the engine has no window
	Run() error

	// Quit stops the loop after the current frame. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window != nil {
		e.window.SetUpdateCallback(e.runFrame)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) RequestFrame(callback func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	if e.window != nil {
		e.window.SetResizeCallback(callback)
	}
}

func (e *engine) SetCloseCallback(callback func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClose = callback
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameLimit(fps float64) {
	e.frameLimit = frameDuration(fps)
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	common.Logger().Info("engine started")
	e.lastFrame = time.Now()
	e.window.ProcessMessages()
	e.closeWindow()
	common.Logger().Info("engine stopped")
	return nil
}

func (e *engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.quitRequested = true
}

// runFrame runs once per window loop iteration. It takes the pending callback before calling it
// so the callback can request the next frame.
func (e *engine) runFrame() {
	e.mu.Lock()
	if e.quitRequested {
		e.mu.Unlock()
		e.closeWindow()
		return
	}
	cb := e.pending
	e.pending = nil
	e.mu.Unlock()

	if cb != nil {
		cb()
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	if e.frameLimit > 0 {
		if remaining := e.frameLimit - time.Since(e.lastFrame); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastFrame = time.Now()
}

// closeWindow runs the close callback and closes the window exactly once, whether the loop ended
// from Quit or from the user.
func (e *engine) closeWindow() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		onClose := e.onClose
		e.mu.Unlock()
		if onClose != nil {
			onClose()
		}
		if e.window == nil {
			return
		}
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("window close failed", "error", err)
		}
	})
}

// frameDuration converts a frame rate cap into a minimum frame duration.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
