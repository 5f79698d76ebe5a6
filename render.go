package vfx

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState owns the GLFW window the effects are presented into.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// GpuState owns the wgpu surface, device and queue.
type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

// CreateWindowState opens a window for presenting. Must be called from the
// main goroutine; the OS thread gets locked.
func CreateWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

// ShouldClose reports whether the user asked to close the window.
func (s *WindowState) ShouldClose() bool {
	return s.windowGlfw.ShouldClose()
}

// PollEvents pumps the GLFW event loop once.
func (s *WindowState) PollEvents() {
	glfw.PollEvents()
}

// CreateGpuState brings up the wgpu device for the given window.
func CreateGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "Effect Device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(s.WindowWidth),
		Height:      uint32(s.WindowHeight),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}

	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

// EffectRenderer owns the GPU resources of one compiled effect: the
// particle pool, the init/update compute pipelines and the billboard
// render pipeline.
type EffectRenderer struct {
	effect CompiledEffect
	log    Logger

	initPipeline   *wgpu.ComputePipeline
	updatePipeline *wgpu.ComputePipeline
	renderPipeline *wgpu.RenderPipeline

	particleBuffer   *wgpu.Buffer
	simParamsBuffer  *wgpu.Buffer
	forceFieldBuffer *wgpu.Buffer
	cameraBuffer     *wgpu.Buffer

	colorRampView       *wgpu.TextureView
	sizeRampView        *wgpu.TextureView
	particleTextureView *wgpu.TextureView
	rampSampler         *wgpu.Sampler
	textureSampler      *wgpu.Sampler

	initBindGroup   *wgpu.BindGroup
	updateBindGroup *wgpu.BindGroup
	renderBindGroup *wgpu.BindGroup

	sizeScale   float32
	spawnCursor uint32
	spawnAcc    float32
	time        float32
}

// NewEffectRenderer uploads the compiled effect to the GPU. The asset
// server resolves the particle texture when the render layout carries one.
func NewEffectRenderer(gpuState *GpuState, effect CompiledEffect, assets *AssetServer, log Logger) *EffectRenderer {
	if log == nil {
		log = NewNopLogger()
	}
	r := &EffectRenderer{effect: effect, log: log}

	r.initPipeline = createComputePipeline(effect.Name+"/init", effect.InitShader, "init_main", gpuState)
	r.updatePipeline = createComputePipeline(effect.Name+"/update", effect.UpdateShader, "update_main", gpuState)
	r.renderPipeline = createBillboardPipeline(effect.Name+"/render", effect.RenderShader, gpuState)

	var err error
	r.particleBuffer, err = gpuState.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: effect.Name + "/particles",
		Size:  ParticleBufferSize(effect.Capacity),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	r.simParamsBuffer, err = gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    effect.Name + "/sim-params",
		Contents: SimParams{}.ToBytes(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	r.forceFieldBuffer, err = gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    effect.Name + "/force-field",
		Contents: effect.Update.ForceFieldBytes(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	r.cameraBuffer, err = gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    effect.Name + "/camera",
		Contents: CameraParams{}.ToBytes(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	r.colorRampView = createRampTexture(effect.Name+"/color-ramp",
		BakeColorRamp(effect.Render.LifetimeColorGradient), gpuState)
	sizeTexels, sizeScale := BakeSizeRamp(effect.Render.LifetimeSizeGradient)
	r.sizeScale = sizeScale
	r.sizeRampView = createRampTexture(effect.Name+"/size-ramp", sizeTexels, gpuState)

	r.rampSampler, err = gpuState.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	if effect.Render.ParticleTexture.Valid() {
		asset, ok := assets.Texture(effect.Render.ParticleTexture)
		if !ok {
			panic("particle texture handle does not resolve in the asset server")
		}
		r.particleTextureView = createTexture2D(effect.Name+"/texture",
			asset.Texels(), asset.Width(), asset.Height(), gpuState)
		r.textureSampler, err = gpuState.device.CreateSampler(&wgpu.SamplerDescriptor{
			MinFilter:     wgpu.FilterModeLinear,
			MagFilter:     wgpu.FilterModeLinear,
			MaxAnisotropy: 1,
		})
		if err != nil {
			panic(err)
		}
	}

	r.createBindGroups(gpuState)
	log.Infof("effect %s ready: capacity %d, spawn rate %.1f/s",
		effect.Name, effect.Capacity, effect.SpawnRate)
	return r
}

func (r *EffectRenderer) createBindGroups(gpuState *GpuState) {
	initLayout := r.initPipeline.GetBindGroupLayout(0)
	defer initLayout.Release()
	var err error
	r.initBindGroup, err = gpuState.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: initLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.simParamsBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: r.particleBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}

	updateLayout := r.updatePipeline.GetBindGroupLayout(0)
	defer updateLayout.Release()
	r.updateBindGroup, err = gpuState.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: updateLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.simParamsBuffer, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: r.particleBuffer, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: r.forceFieldBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: r.cameraBuffer, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: r.particleBuffer, Size: wgpu.WholeSize},
		{Binding: 2, TextureView: r.colorRampView},
		{Binding: 3, TextureView: r.sizeRampView},
		{Binding: 4, Sampler: r.rampSampler},
	}
	if r.particleTextureView != nil {
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: 5, TextureView: r.particleTextureView},
			wgpu.BindGroupEntry{Binding: 6, Sampler: r.textureSampler},
		)
	}
	renderLayout := r.renderPipeline.GetBindGroupLayout(0)
	defer renderLayout.Release()
	r.renderBindGroup, err = gpuState.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  renderLayout,
		Entries: entries,
	})
	if err != nil {
		panic(err)
	}
}

// Frame advances the simulation by dt and renders one frame.
func (r *EffectRenderer) Frame(gpuState *GpuState, camera CameraParams, dt float32) {
	r.time += dt
	r.spawnAcc += r.effect.SpawnRate * dt
	spawnCount := uint32(r.spawnAcc)
	r.spawnAcc -= float32(spawnCount)
	if spawnCount > uint32(r.effect.Capacity) {
		spawnCount = uint32(r.effect.Capacity)
	}

	params := SimParams{
		Dt:           dt,
		Time:         r.time,
		NumParticles: uint32(r.effect.Capacity),
		SpawnCursor:  r.spawnCursor,
		SpawnCount:   spawnCount,
		Lifetime:     r.effect.Lifetime,
		Accel:        r.effect.Update.Accel,
	}
	r.spawnCursor = (r.spawnCursor + spawnCount) % uint32(r.effect.Capacity)

	camera.SizeScale = r.sizeScale
	if err := gpuState.queue.WriteBuffer(r.simParamsBuffer, 0, params.ToBytes()); err != nil {
		panic(err)
	}
	if err := gpuState.queue.WriteBuffer(r.cameraBuffer, 0, camera.ToBytes()); err != nil {
		panic(err)
	}

	nextTexture, err := gpuState.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()
	encoder, err := gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	computePass := encoder.BeginComputePass(nil)
	if spawnCount > 0 {
		computePass.SetPipeline(r.initPipeline)
		computePass.SetBindGroup(0, r.initBindGroup, nil)
		computePass.DispatchWorkgroups((spawnCount+63)/64, 1, 1)
	}
	computePass.SetPipeline(r.updatePipeline)
	computePass.SetBindGroup(0, r.updateBindGroup, nil)
	computePass.DispatchWorkgroups((uint32(r.effect.Capacity)+63)/64, 1, 1)
	if err = computePass.End(); err != nil {
		panic(err)
	}

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.0, G: 0.0, B: 0.0, A: 1.0},
			},
		},
	})
	defer renderPass.Release()

	renderPass.SetPipeline(r.renderPipeline)
	renderPass.SetBindGroup(0, r.renderBindGroup, nil)
	renderPass.Draw(4, uint32(r.effect.Capacity), 0, 0)
	if err = renderPass.End(); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpuState.queue.Submit(cmdBuffer)
	gpuState.surface.Present()
}

func createComputePipeline(name string, shaderCode string, entryPoint string, gpuState *GpuState) *wgpu.ComputePipeline {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := gpuState.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: name,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

func createBillboardPipeline(name string, shaderCode string, gpuState *GpuState) *wgpu.RenderPipeline {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOne,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOne,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

func createRampTexture(name string, texels []byte, gpuState *GpuState) *wgpu.TextureView {
	return createTexture2D(name, texels, RampWidth, 1, gpuState)
}

func createTexture2D(name string, texels []byte, width uint32, height uint32, gpuState *GpuState) *wgpu.TextureView {
	textureExtent := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&textureExtent,
	)
	if err != nil {
		panic(err)
	}
	return textureView
}
