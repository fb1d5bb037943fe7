package cubefall

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/mesh"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/material"
	"github.com/Carmen-Shannon/cubefall/engine/scene"
)

var (
	ErrNoContext   = errors.New("cubefall: nil context")
	ErrNoScene     = errors.New("cubefall: context has no scene")
	ErrNoCamera    = errors.New("cubefall: context has no camera")
	ErrNoRenderer  = errors.New("cubefall: context has no renderer")
	ErrInvalidSize = errors.New("cubefall: window size must be positive")
)

// Renderer is the part of renderer.Renderer the demo drives.
type Renderer interface {
	SetSize(width, height int)
	Size() (width, height int)
	SetClearColor(c common.Color)
	Render(s scene.Scene, cam camera.Camera) error
}

// Context holds the state shared by the generator, the resize reactor and the animation driver.
// It is used from a single goroutine.
type Context struct {
	Scene    scene.Scene
	Camera   camera.Camera
	Renderer Renderer

	// Geometry and Material are shared by every cube.
	Geometry geometry.Geometry
	Material material.Material

	Cubes []mesh.Mesh

	Width  int
	Height int

	Random common.Random
}

// ContextOption is a functional option for configuring a Context.
type ContextOption func(*Context)

// WithRandom replaces the random source used for spawning and motion.
//
// Parameters:
//   - r: the random source, nil keeps the default
//
// Returns:
//   - ContextOption: option function to apply
func WithRandom(r common.Random) ContextOption {
	return func(c *Context) {
		if r != nil {
			c.Random = r
		}
	}
}

// NewContext builds the camera, scene, shared geometry and shared material for a window of the
// given size, and sizes and colours the renderer to match.
//
// Parameters:
//   - r: the renderer that draws the scene
//   - width: the window width in logical pixels
//   - height: the window height in logical pixels
//   - options: functional options applied before the scene is built
//
// Returns:
//   - *Context: the ready context with no cubes yet
//   - error: ErrNoRenderer or ErrInvalidSize
func NewContext(r Renderer, width, height int, options ...ContextOption) (*Context, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	ctx := &Context{
		Renderer: r,
		Width:    width,
		Height:   height,
		Random:   common.DefaultRandom,
	}
	for _, opt := range options {
		opt(ctx)
	}

	ctx.Camera = camera.NewCamera(
		camera.WithFov(CameraFov),
		camera.WithAspect(float32(width)/float32(height)),
		camera.WithNear(CameraNear),
		camera.WithFar(CameraFar),
		camera.WithPosition(0, 0, CameraZ),
		camera.WithTarget(0, 0, 0),
	)
	ctx.Scene = scene.NewScene("cubefall", ctx.Camera, scene.WithCapacity(DefaultCubeCount))
	ctx.Geometry = geometry.NewBoxGeometry(CubeSize, CubeSize, CubeSize, geometry.WithName("cube"))
	ctx.Material = material.NewBasicMaterial(
		material.WithName("cube"),
		material.WithColor(common.MustParseColor(CubeColor)),
	)

	r.SetSize(width, height)
	r.SetClearColor(common.MustParseColor(ClearColor))
	return ctx, nil
}
