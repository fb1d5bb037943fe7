package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/mesh"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/material"
	"github.com/Carmen-Shannon/cubefall/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawCall struct {
	geometry geometry.Geometry
	first    uint32
	count    uint32
}

// recordingBackend records every call the renderer makes.
type recordingBackend struct {
	calls       []string
	configured  [][2]int
	presentMode PresentMode
	clearColor  common.Color
	instances   []GPUInstance
	draws       []drawCall
	beginErr    error
	drawErr     error
	endErr      error
	configErr   error
	released    bool
}

func (b *recordingBackend) ConfigureSurface(width, height int) error {
	b.calls = append(b.calls, "configure")
	if b.configErr != nil {
		return b.configErr
	}
	b.configured = append(b.configured, [2]int{width, height})
	return nil
}

func (b *recordingBackend) SetPresentMode(mode PresentMode) { b.presentMode = mode }

func (b *recordingBackend) SetClearColor(c common.Color) { b.clearColor = c }

func (b *recordingBackend) WriteInstances(instances []GPUInstance) error {
	b.calls = append(b.calls, "write")
	b.instances = append([]GPUInstance(nil), instances...)
	return nil
}

func (b *recordingBackend) BeginFrame(camera.Camera) error {
	b.calls = append(b.calls, "begin")
	return b.beginErr
}

func (b *recordingBackend) DrawInstanced(geo geometry.Geometry, first, count uint32) error {
	b.calls = append(b.calls, "draw")
	b.draws = append(b.draws, drawCall{geo, first, count})
	return b.drawErr
}

func (b *recordingBackend) EndFrame() error {
	b.calls = append(b.calls, "end")
	return b.endErr
}

func (b *recordingBackend) Present() { b.calls = append(b.calls, "present") }

func (b *recordingBackend) DiscardFrame() { b.calls = append(b.calls, "discard") }

// displayRatio stands in for a window whose pixel ratio changes between displays.
type displayRatio struct {
	ratio float32
}

func (d *displayRatio) PixelRatio() float32 { return d.ratio }

func (b *recordingBackend) Release() { b.released = true }

func newTestRenderer(t *testing.T, width, height int, ratio float32, options ...RendererBuilderOption) (*renderer, *recordingBackend) {
	t.Helper()
	rec := &recordingBackend{}
	r := newRenderer(BackendTypeWGPU, options...)
	r.backend = rec
	r.init(width, height, ratio)
	return r, rec
}

func TestSetSizeConfiguresDrawingBuffer(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	require.Equal(t, [][2]int{{800, 600}}, rec.configured)

	r.SetSize(1024, 768)

	w, h := r.Size()
	assert.Equal(t, [2]int{1024, 768}, [2]int{w, h})
	w, h = r.DrawingBufferSize()
	assert.Equal(t, [2]int{1024, 768}, [2]int{w, h})
	assert.Equal(t, [2]int{1024, 768}, rec.configured[len(rec.configured)-1])
}

func TestPixelRatioIsCapped(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 3)
	assert.Equal(t, MaxPixelRatio, r.PixelRatio())
	assert.Equal(t, [2]int{1600, 1200}, rec.configured[0])

	r.SetPixelRatio(1.5)
	assert.Equal(t, float32(1.5), r.PixelRatio())
	w, h := r.DrawingBufferSize()
	assert.Equal(t, [2]int{1200, 900}, [2]int{w, h})
	assert.Equal(t, [2]int{1200, 900}, rec.configured[len(rec.configured)-1])

	r.SetPixelRatio(0)
	assert.Equal(t, float32(1), r.PixelRatio())
}

func TestSetSizeSkipsEmptySurface(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	r.SetSize(800, 0)

	w, h := r.Size()
	assert.Equal(t, [2]int{800, 0}, [2]int{w, h})
	assert.Len(t, rec.configured, 1)
}

func TestConfigureErrorIsNotFatal(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	rec.configErr = errors.New("surface lost")

	r.SetSize(640, 480)
	w, h := r.Size()
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})
}

func TestClearColorAndPresentMode(t *testing.T) {
	bg := common.MustParseColor("#373349")
	r, rec := newTestRenderer(t, 800, 600, 1, WithClearColor(bg), WithPresentMode(PresentModeVSync))

	assert.Equal(t, bg, r.ClearColor())
	assert.Equal(t, bg, rec.clearColor)
	assert.Equal(t, PresentModeVSync, rec.presentMode)

	r.SetClearColor(common.Color{0, 0, 0, 1})
	assert.Equal(t, common.Color{0, 0, 0, 1}, rec.clearColor)

	r.SetPresentMode(PresentModeUncapped)
	assert.Equal(t, PresentModeUncapped, rec.presentMode)
	assert.Equal(t, BackendTypeWGPU, r.BackendType())
}

func TestRenderBatchesByGeometry(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1, WithWorkers(3))

	box := geometry.NewBoxGeometry(1, 1, 1)
	slab := geometry.NewBoxGeometry(2, 1, 1)
	pink := material.NewBasicMaterial(material.WithColor(common.MustParseColor("hotpink")))

	cam := camera.NewCamera()
	s := scene.NewScene("test", cam)
	var meshes []mesh.Mesh
	for i := range 100 {
		geo := box
		if i%4 == 0 {
			geo = slab
		}
		meshes = append(meshes, mesh.NewMesh(geo, pink, mesh.WithPosition(float32(i), 0, 0)))
	}
	hidden := mesh.NewMesh(box, pink, mesh.WithVisible(false))
	require.NoError(t, s.Add(meshes...))
	require.NoError(t, s.Add(hidden))
	rec.calls = nil

	require.NoError(t, r.Render(s, cam))

	assert.Equal(t, []string{"write", "begin", "draw", "draw", "end", "present"}, rec.calls)
	require.Len(t, rec.draws, 2)
	assert.Same(t, slab, rec.draws[0].geometry, "batches follow first-seen geometry order")
	assert.Equal(t, drawCall{slab, 0, 25}, rec.draws[0])
	assert.Equal(t, drawCall{box, 25, 75}, rec.draws[1])

	require.Len(t, rec.instances, 100)
	for i, inst := range rec.instances {
		assert.Equal(t, pink.Color(), common.Color(inst.Color))
		if i < 25 {
			// slab instances are meshes 0, 4, 8, ...
			assert.Equal(t, float32(i*4), inst.Model[12])
		}
	}
}

func TestRenderEmptySceneStillClears(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	cam := camera.NewCamera()
	rec.calls = nil

	require.NoError(t, r.Render(scene.NewScene("empty", cam), cam))
	assert.Equal(t, []string{"write", "begin", "end", "present"}, rec.calls)
	assert.Empty(t, rec.instances)
}

func TestRenderErrors(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	cam := camera.NewCamera()

	assert.ErrorIs(t, r.Render(nil, cam), ErrNilScene)
	assert.ErrorIs(t, r.Render(scene.NewScene("s", cam), nil), ErrNilScene)

	lost := errors.New("surface outdated")
	rec.beginErr = lost
	rec.calls = nil
	err := r.Render(scene.NewScene("s", cam), cam)
	assert.ErrorIs(t, err, lost)
	assert.ErrorIs(t, err, ErrFrameSkipped)
	assert.Equal(t, []string{"write", "begin", "configure"}, rec.calls)

	rec.beginErr = nil
	rec.calls = nil
	require.NoError(t, r.Render(scene.NewScene("s", cam), cam))
	assert.Equal(t, []string{"write", "begin", "end", "present"}, rec.calls)
}

func TestRenderDrawErrorDiscardsFrame(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	cam := camera.NewCamera()
	s := scene.NewScene("s", cam)
	require.NoError(t, s.Add(mesh.NewMesh(geometry.NewBoxGeometry(1, 1, 1), material.NewBasicMaterial())))

	rec.drawErr = errors.New("buffer creation failed")
	rec.calls = nil
	err := r.Render(s, cam)
	assert.ErrorIs(t, err, rec.drawErr)
	assert.NotErrorIs(t, err, ErrFrameSkipped)
	assert.Equal(t, []string{"write", "begin", "draw", "discard"}, rec.calls)

	rec.drawErr = nil
	rec.endErr = errors.New("finish failed")
	rec.calls = nil
	assert.ErrorIs(t, r.Render(s, cam), rec.endErr)
	assert.Equal(t, []string{"write", "begin", "draw", "end", "discard"}, rec.calls)
}

func TestRenderSkipsHiddenMeshes(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	cam := camera.NewCamera()
	s := scene.NewScene("s", cam)
	box := geometry.NewBoxGeometry(1, 1, 1)
	mat := material.NewBasicMaterial()
	shown := mesh.NewMesh(box, mat)
	hidden := mesh.NewMesh(box, mat)
	hidden.SetVisible(false)
	require.NoError(t, s.Add(shown, hidden))

	require.NoError(t, r.Render(s, cam))
	require.Len(t, rec.draws, 1)
	assert.Equal(t, uint32(1), rec.draws[0].count)
	assert.Len(t, rec.instances, 1)
}

func TestSetSizeFollowsDisplayPixelRatio(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	display := &displayRatio{ratio: 1}
	r.ratioSource = display

	display.ratio = 1.5
	r.SetSize(800, 600)
	assert.Equal(t, float32(1.5), r.PixelRatio())
	assert.Equal(t, [2]int{1200, 900}, rec.configured[len(rec.configured)-1])

	display.ratio = 4
	r.SetSize(1024, 768)
	assert.Equal(t, MaxPixelRatio, r.PixelRatio())
	assert.Equal(t, [2]int{2048, 1536}, rec.configured[len(rec.configured)-1])
	w, h := r.Size()
	assert.Equal(t, [2]int{1024, 768}, [2]int{w, h})

	r.SetPixelRatio(1)
	display.ratio = 2
	r.SetSize(800, 600)
	assert.Equal(t, float32(1), r.PixelRatio())
	assert.Nil(t, r.ratioSource)
}

func TestBuilderOptions(t *testing.T) {
	r := newRenderer(BackendTypeWGPU,
		WithForceSoftwareRenderer(true),
		WithMSAA(MSAAOff),
		WithPixelRatio(1.25),
		WithWorkers(3),
		WithWorkers(0),
	)
	assert.True(t, r.forceFallbackAdapter)
	require.NotNil(t, r.pendingMSAA)
	assert.Equal(t, MSAAOff, *r.pendingMSAA)
	require.NotNil(t, r.pendingPixelRatio)
	assert.Equal(t, float32(1.25), *r.pendingPixelRatio)
	assert.Equal(t, 3, r.instanceWorkers)
}

func TestRelease(t *testing.T) {
	r, rec := newTestRenderer(t, 800, 600, 1)
	r.Release()
	assert.True(t, rec.released)
}

func TestGPUInstanceSize(t *testing.T) {
	var inst GPUInstance
	assert.Equal(t, 80, inst.Size())
	assert.Equal(t, "gl", BackendTypeGL.String())
}
