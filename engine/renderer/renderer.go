package renderer

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/mesh"
	"github.com/Carmen-Shannon/cubefall/engine/scene"
	"github.com/Carmen-Shannon/cubefall/engine/window"
)

// MaxPixelRatio caps the device pixel ratio applied to the drawing buffer.
const MaxPixelRatio float32 = 2

// minInstanceChunk is the smallest slice of instances handed to a single pool task.
const minInstanceChunk = 32

var (
	// ErrNilScene is returned by Render when no scene or camera is given.
	ErrNilScene = errors.New("renderer: scene and camera are required")

	// ErrFrameSkipped wraps a failure to acquire the surface for a frame. Nothing was drawn and
	// the surface has been reconfigured, so the next frame may succeed.
	ErrFrameSkipped = errors.New("renderer: frame skipped")
)

// pixelRatioSource reports the current device pixel ratio, usually the window.
type pixelRatioSource interface {
	PixelRatio() float32
}

// batch is one instanced draw: a run of instances sharing a geometry.
type batch struct {
	geometry geometry.Geometry
	first    uint32
	count    uint32
}

type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width      int
	height     int
	pixelRatio float32
	clearColor common.Color

	// ratioSource is re-read on every SetSize; nil once the ratio is pinned.
	ratioSource pixelRatioSource

	// instancePool fans the per-instance matrix build out across workers.
	instancePool    worker.DynamicWorkerPool
	instanceWorkers int

	// Per-frame scratch reused across frames.
	order     []mesh.Mesh
	instances []GPUInstance
	batches   []batch

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingPixelRatio    *float32
}

// Renderer draws a scene through a camera into the window surface.
//
// The output size is logical; the drawing buffer is the logical size multiplied by the pixel
// ratio, which is capped at MaxPixelRatio. Render is synchronous: when it returns the frame
// has been submitted and no goroutine still reads scene state.
type Renderer interface {
	// SetSize sets the logical output size and reconfigures the drawing buffer.
	// Unless the pixel ratio was pinned, it is re-read from the window so that moving to a display
	// with a different density takes effect on the next resize.
	// Non-positive sizes are recorded but the surface is left unconfigured until a valid size arrives.
	//
	// Parameters:
	//   - width: logical width
	//   - height: logical height
	SetSize(width, height int)

	// Size returns the logical output size.
	//
	// Returns:
	//   - width, height: the size last passed to SetSize
	Size() (width, height int)

	// DrawingBufferSize returns the surface size in pixels.
	//
	// Returns:
	//   - width, height: the logical size multiplied by the pixel ratio, rounded
	DrawingBufferSize() (width, height int)

	// SetPixelRatio pins the device pixel ratio, capped at MaxPixelRatio. Values <= 0 reset it to 1.
	// The window's ratio is no longer followed. The current size is re-applied.
	//
	// Parameters:
	//   - ratio: the device pixel ratio
	SetPixelRatio(ratio float32)

	// PixelRatio returns the effective pixel ratio.
	//
	// Returns:
	//   - float32: the ratio in [1, MaxPixelRatio] unless set lower explicitly
	PixelRatio() float32

	// SetClearColor sets the background colour each frame is cleared to.
	//
	// Parameters:
	//   - c: the clear colour
	SetClearColor(c common.Color)

	// ClearColor returns the background colour.
	//
	// Returns:
	//   - common.Color: the clear colour
	ClearColor() common.Color

	// SetPresentMode switches between VSync and uncapped presentation and reconfigures the surface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BackendType reports the GPU backend in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Render draws one frame: every visible mesh of s, seen through cam, over the clear colour.
	// Meshes sharing a geometry are drawn with a single instanced draw.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw through
	//
	// Returns:
	//   - error: ErrNilScene, ErrFrameSkipped when no surface image could be acquired, or a
	//     wrapped backend error. A failed frame never leaves the surface held.
	Render(s scene.Scene, cam camera.Camera) error

	// Release frees the backend's GPU resources. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window. The initial size and pixel ratio are
// taken from the window unless overridden by options.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - win: the window providing the surface
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the GPU backend could not be initialised
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeGL:
		r.backend, err = newGLRendererBackend(win, msaa)
	case BackendTypeWGPU:
		r.backend, err = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	default:
		err = fmt.Errorf("unknown backend type %d", backendType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s renderer backend: %w", backendType, err)
	}

	ratio := win.PixelRatio()
	if r.pendingPixelRatio != nil {
		ratio = *r.pendingPixelRatio
	} else {
		r.ratioSource = win
	}
	r.init(win.Width(), win.Height(), ratio)
	return r, nil
}

// newRenderer builds the front end without a backend.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:              &sync.Mutex{},
		backendType:     backendType,
		pixelRatio:      1,
		clearColor:      common.Color{0, 0, 0, 1},
		instanceWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init pushes the collected configuration into the backend and configures the first surface.
func (r *renderer) init(width, height int, ratio float32) {
	// Queue size of 256 accommodates far more chunks than a frame produces.
	r.instancePool = worker.NewDynamicWorkerPool(r.instanceWorkers, 256, 1*time.Second)

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pixelRatio = clampPixelRatio(ratio)
	r.width, r.height = width, height
	r.configure()
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	if r.ratioSource != nil {
		r.pixelRatio = clampPixelRatio(r.ratioSource.PixelRatio())
	}
	r.configure()
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) DrawingBufferSize() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawingBufferSize()
}

func (r *renderer) SetPixelRatio(ratio float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pixelRatio = clampPixelRatio(ratio)
	r.ratioSource = nil
	r.configure()
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
	r.backend.SetClearColor(c)
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
	r.configure()
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	if s == nil || cam == nil {
		return ErrNilScene
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.collect(s.Meshes())
	r.buildInstances()

	if err := r.backend.WriteInstances(r.instances); err != nil {
		return fmt.Errorf("failed to upload instances: %w", err)
	}
	if err := r.backend.BeginFrame(cam); err != nil {
		// An outdated or lost surface recovers once it is configured again.
		r.configure()
		return fmt.Errorf("%w: %w", ErrFrameSkipped, err)
	}
	for _, b := range r.batches {
		if err := r.backend.DrawInstanced(b.geometry, b.first, b.count); err != nil {
			r.backend.DiscardFrame()
			return fmt.Errorf("failed to draw %s: %w", b.geometry.Name(), err)
		}
	}
	if err := r.backend.EndFrame(); err != nil {
		r.backend.DiscardFrame()
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	r.backend.Present()
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

// configure applies the current size and pixel ratio to the backend. Caller must hold the mutex.
func (r *renderer) configure() {
	w, h := r.drawingBufferSize()
	if w <= 0 || h <= 0 {
		common.Logger().Debug("skipping surface configuration for empty size", "width", r.width, "height", r.height)
		return
	}
	if err := r.backend.ConfigureSurface(w, h); err != nil {
		common.Logger().Warn("failed to configure surface", "width", w, "height", h, "error", err)
		return
	}
	common.Logger().Debug("surface configured", "width", w, "height", h, "pixelRatio", r.pixelRatio)
}

// drawingBufferSize returns the pixel size of the surface. Caller must hold the mutex.
func (r *renderer) drawingBufferSize() (int, int) {
	return int(math.Round(float64(float32(r.width) * r.pixelRatio))),
		int(math.Round(float64(float32(r.height) * r.pixelRatio)))
}

// collect orders the visible meshes so that meshes sharing a geometry are contiguous, and
// records one batch per geometry in first-seen order. Caller must hold the mutex.
func (r *renderer) collect(meshes []mesh.Mesh) {
	r.batches = r.batches[:0]
	r.order = r.order[:0]

	byGeometry := make(map[uint64]int)
	var buckets [][]mesh.Mesh
	for _, m := range meshes {
		if !m.Visible() {
			continue
		}
		geo := m.Geometry()
		i, ok := byGeometry[geo.ID()]
		if !ok {
			i = len(buckets)
			byGeometry[geo.ID()] = i
			buckets = append(buckets, nil)
			r.batches = append(r.batches, batch{geometry: geo})
		}
		buckets[i] = append(buckets[i], m)
	}

	for i, bucket := range buckets {
		r.batches[i].first = uint32(len(r.order))
		r.batches[i].count = uint32(len(bucket))
		r.order = append(r.order, bucket...)
	}
}

// buildInstances fills r.instances from r.order on the worker pool and waits for completion.
// Caller must hold the mutex.
func (r *renderer) buildInstances() {
	n := len(r.order)
	r.instances = slices.Grow(r.instances[:0], n)[:n]
	if n == 0 {
		return
	}

	chunk := max((n+r.instanceWorkers-1)/r.instanceWorkers, minInstanceChunk)

	// A WaitGroup gives the per-frame barrier; the pool's own Wait blocks until workers idle-exit.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		r.instancePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for i := start; i < end; i++ {
					m := r.order[i]
					r.instances[i] = NewGPUInstance(m.ModelMatrix(), m.Material().Color())
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
}

func clampPixelRatio(ratio float32) float32 {
	if ratio <= 0 {
		return 1
	}
	return min(ratio, MaxPixelRatio)
}
