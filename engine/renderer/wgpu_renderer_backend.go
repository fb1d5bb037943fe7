package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/cubefall/common"
	"github.com/Carmen-Shannon/cubefall/engine/camera"
	"github.com/Carmen-Shannon/cubefall/engine/geometry"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/cubefall/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// initialInstanceCapacity is the number of instances the instance buffer is first sized for.
const initialInstanceCapacity = 128

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  common.Color

	// The mesh pipeline; its GPU object is created once the surface format is known.
	meshPipeline     pipeline.Pipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	// instanceProvider holds the per-frame instance storage buffer (group 1).
	instanceProvider bind_group_provider.BindGroupProvider

	// meshProviders tracks geometry providers whose buffers this backend created, for Release.
	meshProviders map[uint64]bind_group_provider.BindGroupProvider
	// cameraProviders tracks camera providers initialised by this backend, for Release.
	cameraProviders map[bind_group_provider.BindGroupProvider]struct{}

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface")
	}
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:               &sync.Mutex{},
		instance:         wgpu.CreateInstance(nil),
		presentMode:      wgpu.PresentModeImmediate,
		sampleCount:      sampleCount,
		meshPipeline:     newMeshPipeline(shader.MeshWGSL(), sampleCount),
		instanceProvider: bind_group_provider.NewBindGroupProvider("instances"),
		meshProviders:    make(map[uint64]bind_group_provider.BindGroupProvider),
		cameraProviders:  make(map[bind_group_provider.BindGroupProvider]struct{}),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	common.Logger().Info("wgpu adapter selected", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))
	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("surface reports no supported formats")
	}
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseAttachments()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The render pass draws into the MSAA texture; the resolved result is written to the
		// swapchain view as the ResolveTarget.
		tex, view, err := b.createAttachment("MSAA Texture", width, height, count, *b.surfaceFormat)
		if err != nil {
			return err
		}
		b.msaaTexture, b.msaaTextureView = tex, view
	}

	// Depth texture sample count must match the color attachment.
	tex, view, err := b.createAttachment("Depth Texture", width, height, count, pipeline.DepthFormat)
	if err != nil {
		return err
	}
	b.depthTexture, b.depthTextureView = tex, view

	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is set per-frame to the
	// swapchain view. When disabled, View is set per-frame and ResolveTarget stays nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: toWGPUColor(b.clearColor),
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.meshPipeline.RenderPipeline() == nil {
		if err := b.createMeshPipeline(); err != nil {
			return fmt.Errorf("failed to create mesh pipeline: %w", err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = toWGPUColor(c)
	}
}

func (b *wgpuRendererBackendImpl) WriteInstances(instances []GPUInstance) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.meshPipeline.RenderPipeline() == nil {
		return errors.New("surface has not been configured")
	}

	needed := uint64(max(len(instances), 1)) * shader.InstanceStride
	if needed > b.instanceProvider.BufferSize(0) {
		capacity := uint64(initialInstanceCapacity) * shader.InstanceStride
		for capacity < needed {
			capacity *= 2
		}
		if err := b.initBindGroup(b.instanceProvider, b.bindGroupLayouts[shader.InstanceGroup],
			wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, capacity); err != nil {
			return err
		}
		common.Logger().Debug("instance buffer grown", "bytes", capacity)
	}

	if len(instances) > 0 {
		b.writeBuffers([]bind_group_provider.BufferWrite{{
			Provider: b.instanceProvider,
			Binding:  0,
			Data:     common.SliceToBytes(instances),
		}})
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(cam camera.Camera) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If a previous frame's surface texture is still held, acquiring another one would fail
	// with "Surface image is already acquired".
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}
	if b.renderPassDescriptor == nil {
		return errors.New("surface has not been configured")
	}

	provider := cam.BindGroupProvider()
	if provider.BindGroup() == nil {
		if err := b.initBindGroup(provider, b.bindGroupLayouts[shader.CameraGroup],
			wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, shader.CameraUniformSize); err != nil {
			return fmt.Errorf("failed to init camera bind group: %w", err)
		}
		b.cameraProviders[provider] = struct{}{}
	}
	uniform := camera.NewGPUCameraUniform(cam, common.WebGPUProjection(cam.ProjectionMatrix()).Mul4(cam.ViewMatrix()))
	b.writeBuffers([]bind_group_provider.BufferWrite{{Provider: provider, Binding: 0, Data: uniform.Marshal()}})

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetPipeline(b.meshPipeline.RenderPipeline())
	pass.SetBindGroup(shader.CameraGroup, provider.BindGroup(), nil)
	pass.SetBindGroup(shader.InstanceGroup, b.instanceProvider.BindGroup(), nil)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawInstanced(geo geometry.Geometry, first, count uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}

	meshProvider := geo.MeshProvider()
	if meshProvider.VertexBuffer() == nil {
		if err := b.initMeshBuffers(meshProvider, geo.VertexData(), geo.IndexData(), geo.IndexCount()); err != nil {
			return err
		}
		b.meshProviders[geo.ID()] = meshProvider
	}

	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), count, 0, 0, first)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) DiscardFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass != nil {
		b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.instanceProvider.Release()
	for _, p := range b.meshProviders {
		p.Release()
	}
	clear(b.meshProviders)
	for p := range b.cameraProviders {
		p.Release()
	}
	clear(b.cameraProviders)

	b.releaseAttachments()
	b.meshPipeline.Release()
	for _, l := range b.bindGroupLayouts {
		l.Release()
	}
	b.bindGroupLayouts = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// createMeshPipeline builds the bind group layouts and GPU pipeline of the mesh program.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createMeshPipeline() error {
	meshShader := b.meshPipeline.Shader()
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: meshShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: meshShader.VertexSource(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	descs := meshShader.BindGroupLayoutDescriptors()
	layouts := make([]*wgpu.BindGroupLayout, len(descs))
	for g := range descs {
		layout, layoutErr := b.device.CreateBindGroupLayout(&descs[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		layouts[g] = layout
	}
	b.bindGroupLayouts = layouts

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            meshShader.Key(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	created, err := b.device.CreateRenderPipeline(b.meshPipeline.RenderPipelineDescriptor(module, pipelineLayout, *b.surfaceFormat))
	if err != nil {
		return err
	}
	b.meshPipeline.SetRenderPipeline(created)
	common.Logger().Debug("render pipeline created", "key", b.meshPipeline.PipelineKey(), "format", *b.surfaceFormat)
	return nil
}

// initMeshBuffers uploads vertex and index data into new GPU buffers on provider.
// Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) initMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	vbuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(vbuf, 0, vertexData)

	ibuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vbuf.Release()
		return err
	}
	b.queue.WriteBuffer(ibuf, 0, indexData)

	provider.SetVertexBuffer(vbuf)
	provider.SetIndexBuffer(ibuf, indexCount)
	common.Logger().Debug("mesh buffers created", "label", provider.Label(), "vertexBytes", len(vertexData), "indices", indexCount)
	return nil
}

// initBindGroup (re)creates the single-buffer bind group of provider with a buffer of the given
// size. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) initBindGroup(provider bind_group_provider.BindGroupProvider, layout *wgpu.BindGroupLayout, usage wgpu.BufferUsage, size uint64) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: provider.Label() + " Buffer",
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return err
	}
	provider.SetBuffer(0, buf, size)
	provider.SetBindGroupLayout(layout)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

// writeBuffers queues buffer writes. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

// createAttachment creates a render attachment texture and its view. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) createAttachment(label string, width, height int, sampleCount uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

// releaseAttachments frees the MSAA and depth attachments. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func toWGPUColor(c common.Color) wgpu.Color {
	return wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}
