package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("cubefall"),
		WithSize(800, 600),
		WithMinSize(320, 240),
		WithMaxSize(1920, 1080),
		WithClientAPI(ClientAPIOpenGL),
	)

	assert.Equal(t, "cubefall", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, [4]int{320, 240, 1920, 1080}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
	assert.Equal(t, ClientAPIOpenGL, w.clientAPI)
	assert.Equal(t, float32(1), w.PixelRatio())
}

func TestHandleResize(t *testing.T) {
	w := newEngineWindow()
	var gotW, gotH int
	w.SetResizeCallback(func(width, height int) { gotW, gotH = width, height })

	w.handleResize(1024, 768, 2048, 1536)

	assert.Equal(t, [2]int{1024, 768}, [2]int{gotW, gotH})
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, float32(2), w.PixelRatio())
}

func TestUninitializedWindow(t *testing.T) {
	w := newEngineWindow()

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())

	// Context operations are no-ops before the platform window exists.
	w.MakeContextCurrent()
	w.SwapBuffers()
	w.SetSwapInterval(1)
}
