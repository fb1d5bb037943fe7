package cubefall

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/frame"
	"github.com/Carmen-Shannon/cubefall/engine/scene"
)

var errRender = errors.New("surface lost")

// fakeRenderer records the calls the demo makes. Render call number failAt fails once.
type fakeRenderer struct {
	width, height int
	sizeCalls     int
	clear         common.Color
	calls         int
	renders       int
	failAt        int
}

func (f *fakeRenderer) SetSize(width, height int) {
	f.width, f.height = width, height
	f.sizeCalls++
}

func (f *fakeRenderer) Size() (int, int) { return f.width, f.height }

func (f *fakeRenderer) SetClearColor(c common.Color) { f.clear = c }

func (f *fakeRenderer) Render(s scene.Scene, cam camera.Camera) error {
	f.calls++
	if f.calls == f.failAt {
		return errRender
	}
	f.renders++
	return nil
}

type fakeSource struct {
	callback func(width, height int)
}

func (f *fakeSource) SetResizeCallback(callback func(width, height int)) {
	f.callback = callback
}

func newTestContext(t *testing.T, width, height int) (*Context, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	ctx, err := NewContext(r, width, height, WithRandom(common.NewRandom(42)))
	require.NoError(t, err)
	return ctx, r
}

func constRandom(v float32) common.Random {
	return func() float32 { return v }
}

func TestNewContext(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)

	assert.Equal(t, 800, ctx.Width)
	assert.Equal(t, 600, ctx.Height)
	assert.Equal(t, 800, r.width)
	assert.Equal(t, 600, r.height)
	assert.Equal(t, common.MustParseColor("#373349"), r.clear)

	assert.Equal(t, CameraFov, ctx.Camera.Fov())
	assert.InDelta(t, 800.0/600.0, ctx.Camera.Aspect(), 1e-6)
	assert.Equal(t, CameraNear, ctx.Camera.Near())
	assert.Equal(t, CameraFar, ctx.Camera.Far())
	_, _, z := ctx.Camera.Position()
	assert.Equal(t, CameraZ, z)

	assert.Same(t, ctx.Camera, ctx.Scene.Camera())
	assert.Equal(t, 0, ctx.Scene.Count())
	assert.Equal(t, common.MustParseColor("hotpink"), ctx.Material.Color())
}

func TestNewContextErrors(t *testing.T) {
	_, err := NewContext(nil, 800, 600)
	assert.ErrorIs(t, err, ErrNoRenderer)

	_, err = NewContext(&fakeRenderer{}, 0, 600)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = NewContext(&fakeRenderer{}, 800, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestGenerateScaleIsUniform(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	cubes, err := Generate(ctx, 100)
	require.NoError(t, err)

	for _, c := range cubes {
		sx, sy, sz := c.Scale()
		assert.GreaterOrEqual(t, sx, float32(0))
		assert.Less(t, sx, float32(1))
		assert.Equal(t, sx, sy)
		assert.Equal(t, sx, sz)
	}
}

func TestGenerateInitialBounds(t *testing.T) {
	for _, size := range [][2]int{{800, 600}, {1920, 1080}, {300, 900}} {
		ctx, _ := newTestContext(t, size[0], size[1])
		cubes, err := Generate(ctx, 100)
		require.NoError(t, err)

		maxX := float32(size[0]) * 0.01
		maxY := float32(size[1]) * 0.01
		for _, c := range cubes {
			x, y, z := c.Position()
			assert.LessOrEqual(t, abs(x), maxX)
			assert.LessOrEqual(t, abs(y), maxY)
			assert.Zero(t, z)

			rx, ry, rz := c.Rotation()
			assert.GreaterOrEqual(t, rx, float32(0))
			assert.Less(t, rx, float32(360))
			assert.Zero(t, ry)
			assert.GreaterOrEqual(t, rz, float32(0))
			assert.Less(t, rz, float32(360))
		}
	}
}

func TestGenerateMembership(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)

	first, err := Generate(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, first, 100)
	assert.Equal(t, 100, ctx.Scene.Count())

	second, err := Generate(ctx, 37)
	require.NoError(t, err)
	assert.Len(t, second, 37)
	assert.Equal(t, 137, ctx.Scene.Count())
	assert.Len(t, ctx.Cubes, 137)

	seen := make(map[uint64]bool)
	for _, c := range ctx.Cubes {
		assert.False(t, seen[c.ID()], "duplicate cube %d", c.ID())
		seen[c.ID()] = true
		assert.Same(t, c, ctx.Scene.Get(c.ID()))
	}
}

func TestGenerateSharesGeometryAndMaterial(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	cubes, err := Generate(ctx, 10)
	require.NoError(t, err)

	for _, c := range cubes {
		assert.Same(t, ctx.Geometry, c.Geometry())
		assert.Same(t, ctx.Material, c.Material())
	}
}

func TestGenerateDefaultsAndErrors(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	cubes, err := Generate(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, cubes, DefaultCubeCount)

	_, err = Generate(nil, 10)
	assert.ErrorIs(t, err, ErrNoContext)

	_, err = Generate(&Context{}, 10)
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, _ := newTestContext(t, 800, 600)
	b, _ := newTestContext(t, 800, 600)
	ca, err := Generate(a, 20)
	require.NoError(t, err)
	cb, err := Generate(b, 20)
	require.NoError(t, err)

	for i := range ca {
		ax, ay, _ := ca[i].Position()
		bx, by, _ := cb[i].Position()
		assert.Equal(t, ax, bx)
		assert.Equal(t, ay, by)
	}
}

func TestTickWrapInvariant(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 100)
	require.NoError(t, err)

	bound := WrapBoundary(ctx.Camera.Fov())
	for i := 0; i < 1000; i++ {
		require.NoError(t, Tick(ctx))
		for _, c := range ctx.Cubes {
			_, y, _ := c.Position()
			require.LessOrEqual(t, y, bound)
		}
	}
	assert.Equal(t, 1000, r.renders)
}

func TestTickResetsToNegativeBoundary(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 1)
	require.NoError(t, err)
	ctx.Random = constRandom(0.5)

	bound := WrapBoundary(ctx.Camera.Fov())
	cube := ctx.Cubes[0]
	cube.SetPosition(1, bound-0.01, 0)
	cube.SetRotation(0, 0, 0)

	require.NoError(t, Tick(ctx))
	x, y, z := cube.Position()
	assert.Equal(t, float32(1), x)
	assert.Equal(t, -bound, y)
	assert.Zero(t, z)

	rx, ry, rz := cube.Rotation()
	assert.InDelta(t, 0.005, rx, 1e-7)
	assert.InDelta(t, 0.005, ry, 1e-7)
	assert.Zero(t, rz)

	require.NoError(t, Tick(ctx))
	_, y, _ = cube.Position()
	assert.InDelta(t, -bound+0.05, y, 1e-6)
}

func TestTickFollowsFovChange(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 1)
	require.NoError(t, err)
	ctx.Random = constRandom(0)
	cube := ctx.Cubes[0]

	require.NoError(t, Tick(ctx))
	ctx.Camera.SetFov(40)
	ctx.Camera.UpdateProjection()

	narrow := WrapBoundary(40)
	require.Less(t, narrow, WrapBoundary(CameraFov))
	cube.SetPosition(0, narrow+0.01, 0)
	require.NoError(t, Tick(ctx))
	_, y, _ := cube.Position()
	assert.Equal(t, -narrow, y)
}

func TestWrapBoundaryIgnoresCameraDistance(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 1)
	require.NoError(t, err)
	ctx.Random = constRandom(0)
	ctx.Camera.SetPosition(0, 0, 20)

	bound := WrapBoundary(ctx.Camera.Fov())
	assert.InDelta(t, common.ViewportHeight(CameraFov, 5)/2*WrapFactor, bound, 1e-6)

	cube := ctx.Cubes[0]
	cube.SetPosition(0, bound-0.01, 0)
	require.NoError(t, Tick(ctx))
	_, y, _ := cube.Position()
	assert.Equal(t, bound-0.01, y)

	cube.SetPosition(0, bound+0.01, 0)
	require.NoError(t, Tick(ctx))
	_, y, _ = cube.Position()
	assert.Equal(t, -bound, y)
}

func TestTickStepRanges(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 50)
	require.NoError(t, err)

	before := make([][3]float32, len(ctx.Cubes))
	for i, c := range ctx.Cubes {
		_, y, _ := c.Position()
		rx, ry, _ := c.Rotation()
		before[i] = [3]float32{y, rx, ry}
	}
	require.NoError(t, Tick(ctx))

	bound := WrapBoundary(ctx.Camera.Fov())
	for i, c := range ctx.Cubes {
		_, y, _ := c.Position()
		rx, ry, _ := c.Rotation()
		if y != -bound {
			dy := y - before[i][0]
			assert.GreaterOrEqual(t, dy, float32(0))
			assert.Less(t, dy, FallStep+1e-6)
		}
		assert.Less(t, rx-before[i][1], SpinStep+1e-6)
		assert.Less(t, ry-before[i][2], SpinStep+1e-6)
	}
}

func TestWrapBoundary(t *testing.T) {
	assert.InDelta(t, 2*0.7673269879789604*5/2*1.2, WrapBoundary(75), 1e-4)
	assert.Less(t, WrapBoundary(40), WrapBoundary(75))
}

func TestTickErrors(t *testing.T) {
	assert.ErrorIs(t, Tick(nil), ErrNoContext)
	assert.ErrorIs(t, Tick(&Context{}), ErrNoScene)

	ctx, r := newTestContext(t, 800, 600)
	r.failAt = 1
	err := Tick(ctx)
	assert.ErrorIs(t, err, errRender)
	assert.ErrorIs(t, err, ErrFrameDropped)
	require.NoError(t, Tick(ctx))

	cam := ctx.Camera
	ctx.Camera = nil
	assert.ErrorIs(t, Tick(ctx), ErrNoCamera)
	ctx.Camera = cam
	ctx.Renderer = nil
	assert.ErrorIs(t, Tick(ctx), ErrNoRenderer)
}

func TestHandleResizeIsIdempotent(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)

	HandleResize(ctx, 1024, 600)
	aspect := ctx.Camera.Aspect()
	proj := ctx.Camera.ProjectionMatrix()
	w, h := r.Size()

	HandleResize(ctx, 1024, 600)
	assert.Equal(t, aspect, ctx.Camera.Aspect())
	assert.Equal(t, proj, ctx.Camera.ProjectionMatrix())
	w2, h2 := r.Size()
	assert.Equal(t, w, w2)
	assert.Equal(t, h, h2)
}

func TestHandleResizeUpdatesProjection(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)

	HandleResize(ctx, 1600, 600)
	want := mgl32.Perspective(mgl32.DegToRad(CameraFov), 1600.0/600.0, CameraNear, CameraFar)
	assert.True(t, want.ApproxEqualThreshold(ctx.Camera.ProjectionMatrix(), 1e-5))
}

func TestHandleResizeIgnoresEmptySize(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	calls := r.sizeCalls

	HandleResize(ctx, 800, 0)
	HandleResize(ctx, 0, 0)
	HandleResize(nil, 800, 600)

	assert.Equal(t, calls, r.sizeCalls)
	assert.Equal(t, 800, ctx.Width)
	assert.Equal(t, 600, ctx.Height)
	assert.InDelta(t, 800.0/600.0, ctx.Camera.Aspect(), 1e-6)
}

func TestAttach(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	src := &fakeSource{}
	Attach(ctx, src)
	require.NotNil(t, src.callback)

	src.callback(640, 480)
	assert.Equal(t, 640, r.width)
	assert.Equal(t, 480, r.height)
	assert.Equal(t, 640, ctx.Width)
}

func TestDriverRunsOnScheduler(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 100)
	require.NoError(t, err)

	s := frame.NewManualScheduler()
	d := NewDriver(ctx)
	d.Start(s)
	assert.True(t, s.Pending())

	assert.Equal(t, 1000, s.StepN(1000))
	assert.Equal(t, 1000, d.Ticks())
	assert.Equal(t, 1000, r.renders)
	assert.NoError(t, d.Err())
	assert.True(t, s.Pending())
}

func TestDriverSurvivesDroppedFrame(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 10)
	require.NoError(t, err)
	r.failAt = 3

	var hooked error
	s := frame.NewManualScheduler()
	d := NewDriver(ctx, WithOnError(func(err error) { hooked = err }))
	d.Start(s)

	assert.Equal(t, 10, s.StepN(10))
	assert.True(t, s.Pending())
	assert.Equal(t, 10, d.Ticks())
	assert.Equal(t, 1, d.Dropped())
	assert.Equal(t, 9, r.renders)
	assert.NoError(t, d.Err())
	assert.NoError(t, hooked)
}

func TestDriverStopsOnContextError(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)

	var hooked error
	s := frame.NewManualScheduler()
	d := NewDriver(ctx, WithOnError(func(err error) { hooked = err }))
	d.Start(s)

	assert.Equal(t, 2, s.StepN(2))
	ctx.Camera = nil
	assert.Equal(t, 1, s.StepN(10))
	assert.ErrorIs(t, hooked, ErrNoCamera)
	assert.False(t, s.Pending())
	assert.Equal(t, 2, d.Ticks())
	assert.Equal(t, 2, r.renders)
	assert.ErrorIs(t, d.Err(), ErrNoCamera)
}

func TestDriverStop(t *testing.T) {
	ctx, _ := newTestContext(t, 800, 600)
	s := frame.NewManualScheduler()
	d := NewDriver(ctx)
	d.Start(s)

	s.StepN(5)
	d.Stop()
	assert.Equal(t, 1, s.StepN(10))
	assert.Equal(t, 5, d.Ticks())
	assert.False(t, s.Pending())
}

func TestScenario800x600(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	_, err := Generate(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, 100, ctx.Scene.Count())
	assert.NotNil(t, ctx.Scene.Camera())
	for _, c := range ctx.Scene.Meshes() {
		x, y, _ := c.Position()
		assert.GreaterOrEqual(t, x, float32(-8))
		assert.Less(t, x, float32(8))
		assert.GreaterOrEqual(t, y, float32(-6))
		assert.Less(t, y, float32(6))
	}

	s := frame.NewManualScheduler()
	d := NewDriver(ctx)
	d.Start(s)
	require.Equal(t, 1000, s.StepN(1000))
	require.NoError(t, d.Err())

	bound := WrapBoundary(ctx.Camera.Fov())
	for _, c := range ctx.Cubes {
		_, y, _ := c.Position()
		assert.LessOrEqual(t, y, bound)
	}
	assert.Equal(t, 1000, r.renders)
}

func TestScenarioResize800x600To1024x768(t *testing.T) {
	ctx, r := newTestContext(t, 800, 600)
	assert.InDelta(t, 1.3333, ctx.Camera.Aspect(), 1e-3)

	HandleResize(ctx, 1024, 768)
	assert.InDelta(t, 1.3333, ctx.Camera.Aspect(), 1e-3)
	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
