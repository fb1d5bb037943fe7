package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// glSurface is the part of the window the OpenGL backend drives.
type glSurface interface {
	MakeContextCurrent()
	SwapBuffers()
	SetSwapInterval(interval int)
}

// glMesh holds the GL objects of one uploaded geometry.
type glMesh struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

type glRendererBackendImpl struct {
	mu      *sync.Mutex
	surface glSurface

	meshPipeline pipeline.Pipeline
	program      uint32
	viewProjLoc  int32

	instanceVBO      uint32
	instanceCapacity int // bytes allocated in instanceVBO

	meshes map[uint64]glMesh

	width        int32
	height       int32
	clearColor   common.Color
	swapInterval int
	inFrame      bool
}

var _ RendererBackend = &glRendererBackendImpl{}

func newGLRendererBackend(surface glSurface, sampleCount MSAASampleCount) (*glRendererBackendImpl, error) {
	surface.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	meshPipeline := newMeshPipeline(shader.MeshGLSL(), sampleCount)
	mesh := meshPipeline.Shader()
	program, err := linkProgram(mesh.VertexSource(), mesh.FragmentSource())
	if err != nil {
		return nil, fmt.Errorf("failed to build %s program: %w", mesh.Key(), err)
	}

	b := &glRendererBackendImpl{
		mu:           &sync.Mutex{},
		surface:      surface,
		meshPipeline: meshPipeline,
		program:      program,
		viewProjLoc:  gl.GetUniformLocation(program, gl.Str(shader.ViewProjUniform+"\x00")),
		meshes:       make(map[uint64]glMesh),
		swapInterval: 1,
	}
	gl.GenBuffers(1, &b.instanceVBO)

	applyGLPipelineState(meshPipeline)

	common.Logger().Info("opengl context ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return b, nil
}

func (b *glRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = int32(width), int32(height)
	b.surface.SetSwapInterval(b.swapInterval)
	return nil
}

func (b *glRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.swapInterval = 0
	default:
		b.swapInterval = 1
	}
}

func (b *glRendererBackendImpl) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
}

func (b *glRendererBackendImpl) WriteInstances(instances []GPUInstance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(instances) == 0 {
		return nil
	}
	data := common.SliceToBytes(instances)

	gl.BindBuffer(gl.ARRAY_BUFFER, b.instanceVBO)
	if len(data) > b.instanceCapacity {
		capacity := max(b.instanceCapacity, initialInstanceCapacity*shader.InstanceStride)
		for capacity < len(data) {
			capacity *= 2
		}
		gl.BufferData(gl.ARRAY_BUFFER, capacity, nil, gl.DYNAMIC_DRAW)
		b.instanceCapacity = capacity
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return glError("upload instances")
}

func (b *glRendererBackendImpl) BeginFrame(cam camera.Camera) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFrame {
		return errors.New("previous frame not yet presented")
	}
	b.surface.MakeContextCurrent()

	gl.Viewport(0, 0, b.width, b.height)
	gl.ClearColor(b.clearColor[0], b.clearColor[1], b.clearColor[2], b.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(b.program)
	viewProj := cam.ViewProjectionMatrix()
	gl.UniformMatrix4fv(b.viewProjLoc, 1, false, &viewProj[0])

	b.inFrame = true
	return nil
}

func (b *glRendererBackendImpl) DrawInstanced(geo geometry.Geometry, first, count uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return errors.New("no frame in progress")
	}

	m, ok := b.meshes[geo.ID()]
	if !ok {
		m = uploadMesh(geo, b.instanceVBO)
		b.meshes[geo.ID()] = m
		common.Logger().Debug("mesh buffers created", "label", geo.Name(), "indices", m.indexCount)
	}

	gl.BindVertexArray(m.vao)
	bindInstanceAttributes(b.instanceVBO, int(first)*shader.InstanceStride)
	gl.DrawElementsInstanced(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil, int32(count))
	gl.BindVertexArray(0)
	return glError("draw " + geo.Name())
}

func (b *glRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	gl.UseProgram(0)
	return glError("end frame")
}

func (b *glRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inFrame {
		return
	}
	b.surface.SwapBuffers()
	b.inFrame = false
}

// DiscardFrame drops the frame without swapping; the next BeginFrame clears the back buffer.
func (b *glRendererBackendImpl) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gl.UseProgram(0)
	b.inFrame = false
}

func (b *glRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, m := range b.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		delete(b.meshes, id)
	}
	if b.instanceVBO != 0 {
		gl.DeleteBuffers(1, &b.instanceVBO)
		b.instanceVBO = 0
	}
	if b.program != 0 {
		gl.DeleteProgram(b.program)
		b.program = 0
	}
}

// uploadMesh creates the vertex array for geo with its per-vertex attributes bound.
// Per-instance attributes are re-pointed for every draw by bindInstanceAttributes.
func uploadMesh(geo geometry.Geometry, instanceVBO uint32) glMesh {
	var m glMesh
	m.indexCount = int32(geo.IndexCount())

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	vertexData := geo.VertexData()
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertexData), gl.Ptr(vertexData), gl.STATIC_DRAW)

	stride := int32(geometry.GPUVertexStride)
	gl.EnableVertexAttribArray(shader.AttribPosition)
	gl.VertexAttribPointer(shader.AttribPosition, 3, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(shader.AttribNormal)
	gl.VertexAttribPointer(shader.AttribNormal, 3, gl.FLOAT, false, stride, glOffset(12))
	gl.EnableVertexAttribArray(shader.AttribUV)
	gl.VertexAttribPointer(shader.AttribUV, 2, gl.FLOAT, false, stride, glOffset(24))

	indexData := geo.IndexData()
	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indexData), gl.Ptr(indexData), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ARRAY_BUFFER, instanceVBO)
	for i := range uint32(5) {
		gl.EnableVertexAttribArray(shader.AttribModel + i)
		gl.VertexAttribDivisor(shader.AttribModel+i, 1)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return m
}

// bindInstanceAttributes points the model matrix columns and colour of the bound vertex array
// at the instance buffer, starting offset bytes in.
func bindInstanceAttributes(instanceVBO uint32, offset int) {
	stride := int32(shader.InstanceStride)
	gl.BindBuffer(gl.ARRAY_BUFFER, instanceVBO)
	for col := range 4 {
		gl.VertexAttribPointer(shader.AttribModel+uint32(col), 4, gl.FLOAT, false, stride, glOffset(offset+col*16))
	}
	gl.VertexAttribPointer(shader.AttribColor, 4, gl.FLOAT, false, stride, glOffset(offset+64))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: gl error 0x%x", op, code)
	}
	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(sh, 1, csources, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(buf))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile shader: %s", strings.TrimRight(buf, "\x00"))
	}
	return sh, nil
}

func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	vs, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		buf := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(buf))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(buf, "\x00"))
	}
	return prog, nil
}

// applyGLPipelineState applies a pipeline's fixed-function state to the current context.
func applyGLPipelineState(p pipeline.Pipeline) {
	if p.DepthTestEnabled() {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(p.DepthWriteEnabled())

	switch p.CullMode() {
	case wgpu.CullModeFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case wgpu.CullModeBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	default:
		gl.Disable(gl.CULL_FACE)
	}
	if p.FrontFace() == wgpu.FrontFaceCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}

	if p.BlendEnabled() {
		gl.Enable(gl.BLEND)
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	if p.SampleCount() > 1 {
		gl.Enable(gl.MULTISAMPLE)
	} else {
		gl.Disable(gl.MULTISAMPLE)
	}
}
