package cubefall

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/cubefall/common"
)

// ErrFrameDropped wraps a render failure. The cube state advanced but the frame was not shown.
var ErrFrameDropped = errors.New("cubefall: frame dropped")

// FrameScheduler runs a callback once on the next frame. The engine and frame.ManualScheduler
// both satisfy it.
type FrameScheduler interface {
	RequestFrame(callback func())
}

// WrapBoundary returns the height above which a cube wraps to the bottom of the view.
//
// Parameters:
//   - fovDegrees: the camera's vertical field of view
//
// Returns:
//   - float32: half the viewport height at ViewportDistance, widened by WrapFactor
func WrapBoundary(fovDegrees float32) float32 {
	return common.ViewportHeight(fovDegrees, ViewportDistance) / 2 * WrapFactor
}

// Tick advances every cube by one frame and renders the scene.
// Each cube rises by a fresh random step in [0, FallStep) and spins on x and y by fresh random
// steps in [0, SpinStep). A cube above the wrap boundary moves to exactly minus the boundary.
//
// Parameters:
//   - ctx: the application context
//
// Returns:
//   - error: a context error, or the render error wrapped in ErrFrameDropped
func Tick(ctx *Context) error {
	if ctx == nil {
		return ErrNoContext
	}
	if ctx.Scene == nil {
		return ErrNoScene
	}
	if ctx.Camera == nil {
		return ErrNoCamera
	}
	if ctx.Renderer == nil {
		return ErrNoRenderer
	}
	r := ctx.Random
	if r == nil {
		r = common.DefaultRandom
	}

	bound := WrapBoundary(ctx.Camera.Fov())
	for _, cube := range ctx.Cubes {
		x, y, z := cube.Position()
		y += r() * FallStep

		rx, ry, rz := cube.Rotation()
		rx += r() * SpinStep
		ry += r() * SpinStep

		if y > bound {
			y = -bound
		}
		cube.SetPosition(x, y, z)
		cube.SetRotation(rx, ry, rz)
	}

	if err := ctx.Renderer.Render(ctx.Scene, ctx.Camera); err != nil {
		return fmt.Errorf("%w: %w", ErrFrameDropped, err)
	}
	return nil
}

// Driver runs Tick once per frame and re-arms itself on a FrameScheduler.
// Dropped frames are logged and the loop keeps running; only a context error ends it.
type Driver struct {
	ctx       *Context
	scheduler FrameScheduler
	onError   func(error)
	ticks     int
	dropped   int
	err       error
	stopped   bool
}

// DriverOption is a functional option for configuring a Driver.
type DriverOption func(*Driver)

// WithOnError registers a function called once with the context error that stops the loop.
//
// Parameters:
//   - fn: the error hook
//
// Returns:
//   - DriverOption: option function to apply
func WithOnError(fn func(error)) DriverOption {
	return func(d *Driver) {
		d.onError = fn
	}
}

// NewDriver creates a Driver for ctx. It does nothing until Start is called.
//
// Parameters:
//   - ctx: the application context
//   - options: functional options for the driver
//
// Returns:
//   - *Driver: the idle driver
func NewDriver(ctx *Context, options ...DriverOption) *Driver {
	d := &Driver{ctx: ctx}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Start requests the first frame from scheduler. Every frame runs Tick and requests the next.
// A dropped frame is logged at Warn and the next frame is still requested. Any other tick
// error is logged and ends the loop; Err reports it.
//
// Parameters:
//   - scheduler: the frame source, usually the engine
func (d *Driver) Start(scheduler FrameScheduler) {
	d.scheduler = scheduler
	d.stopped = false
	d.err = nil
	scheduler.RequestFrame(d.frame)
}

// Stop ends the loop after the current frame.
func (d *Driver) Stop() {
	d.stopped = true
}

// Ticks returns how many ticks advanced the cubes, including ticks whose frame was dropped.
func (d *Driver) Ticks() int {
	return d.ticks
}

// Dropped returns how many frames failed to render.
func (d *Driver) Dropped() int {
	return d.dropped
}

// Err returns the error that stopped the loop, if any.
func (d *Driver) Err() error {
	return d.err
}

func (d *Driver) frame() {
	if d.stopped {
		return
	}
	err := Tick(d.ctx)
	switch {
	case err == nil:
		d.ticks++
	case errors.Is(err, ErrFrameDropped):
		d.ticks++
		d.dropped++
		common.Logger().Warn("frame dropped", "tick", d.ticks, "error", err)
	default:
		d.err = err
		common.Logger().Error("animation stopped", "tick", d.ticks, "error", err)
		if d.onError != nil {
			d.onError(err)
		}
		return
	}
	d.scheduler.RequestFrame(d.frame)
}
