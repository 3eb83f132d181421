package renderer

import "github.com/kestrel3d/kestrel/common"

// BackendType identifies the GPU backend implementation used by the Renderer.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU BackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// LayoutKind identifies one of the shared, immutable bind group layouts the
// backend creates at startup. Pipelines reference layouts by kind both when
// registering a pipeline and when creating bind groups.
type LayoutKind int

const (
	// LayoutUniform is a single uniform buffer at binding 0, visible to both stages.
	LayoutUniform LayoutKind = iota

	// LayoutTexture is a 2D texture at binding 0 and a filtering sampler at binding 1,
	// visible to the fragment stage.
	LayoutTexture

	// LayoutUniformPair is two uniform buffers at bindings 0 and 1, visible to both
	// stages. Used by the UI pipeline for its panel + placement uniforms.
	LayoutUniformPair
)

// Topology selects the primitive assembly mode for a pipeline.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeBack
	CullModeFront
)

// VertexFormat is the data type of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// StepMode controls whether a vertex buffer advances per vertex or per instance.
type StepMode int

const (
	StepModeVertex StepMode = iota
	StepModeInstance
)

// VertexAttribute describes one attribute within a vertex buffer layout.
type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexLayout describes the memory layout of one vertex buffer slot.
type VertexLayout struct {
	Stride     uint64
	StepMode   StepMode
	Attributes []VertexAttribute
}

// PipelineDescriptor carries everything the backend needs to build one GPU
// render pipeline. Shader source is WGSL with vs_main/fs_main entry points.
type PipelineDescriptor struct {
	Key              string
	ShaderSource     string
	VertexLayouts    []VertexLayout
	BindGroupLayouts []LayoutKind
	Topology         Topology
	CullMode         CullMode
	DepthTest        bool
	DepthWrite       bool
	Blend            bool
}

// Buffer is a GPU buffer handle created through a Backend.
type Buffer interface {
	// Size returns the buffer's allocated size in bytes.
	Size() uint64
	// Release frees the GPU buffer. The handle must not be used afterwards.
	Release()
}

// Texture is a GPU texture handle created through a Backend.
type Texture interface {
	// Release frees the GPU texture and its view.
	Release()
}

// BindGroup is an immutable binding of resources to one of the shared layouts.
type BindGroup interface {
	// Release frees the bind group.
	Release()
}

// RenderPass records draw commands inside the single per-frame render pass.
type RenderPass interface {
	// SetPipeline binds a pipeline previously registered under key.
	SetPipeline(key string)
	// SetBindGroup binds a bind group at the given group index.
	SetBindGroup(index uint32, bg BindGroup)
	// SetVertexBuffer binds a vertex buffer at the given slot.
	SetVertexBuffer(slot uint32, buf Buffer)
	// SetIndexBuffer binds a uint32 index buffer.
	SetIndexBuffer(buf Buffer)
	// DrawIndexed issues one indexed instanced draw.
	DrawIndexed(indexCount, instanceCount uint32)
	// Draw issues one non-indexed instanced draw.
	Draw(vertexCount, instanceCount uint32)
}

// BufferUsage narrows what a created buffer may be bound as.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

// Backend is the device/surface provider the renderer and every pipeline draw
// against. The wgpu implementation talks to real hardware; the rendertest
// package provides a recording fake for pipeline and orchestrator tests.
//
// Frame protocol: BeginFrame acquires the next presentable target and opens
// the render pass (an error means the surface is momentarily unavailable and
// the whole frame must be skipped). EndFrame closes the pass and submits;
// Present displays the result.
type Backend interface {
	// Configure (re)configures the surface and depth attachment for the given
	// size. Must be called once before the first frame and on every resize.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	Configure(width, height uint32)

	// SetPresentMode sets the surface present mode, applied on the next Configure.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the render pass clears to each frame.
	//
	// Parameters:
	//   - r, g, b, a: clear color components in [0, 1]
	SetClearColor(r, g, b, a float64)

	// RegisterPipeline compiles the descriptor's shader and builds the GPU
	// render pipeline, cached under the descriptor key.
	//
	// Parameters:
	//   - desc: the pipeline configuration
	//
	// Returns:
	//   - error: an error if shader compilation or pipeline creation fails
	RegisterPipeline(desc PipelineDescriptor) error

	// CreateBuffer allocates a GPU buffer of the given size.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: size in bytes
	//   - usage: how the buffer will be bound
	//
	// Returns:
	//   - Buffer: the created buffer handle
	CreateBuffer(label string, size uint64, usage BufferUsage) Buffer

	// CreateBufferInit allocates a GPU buffer sized to data and uploads data to it.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: initial contents; also determines the buffer size
	//   - usage: how the buffer will be bound
	//
	// Returns:
	//   - Buffer: the created buffer handle
	CreateBufferInit(label string, data []byte, usage BufferUsage) Buffer

	// WriteBuffer uploads data into an existing buffer at the given offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: byte offset into the buffer
	//   - data: bytes to upload
	WriteBuffer(buf Buffer, offset uint64, data []byte)

	// CreateTexture uploads RGBA pixel data into a new sampleable GPU texture.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - data: RGBA pixels with dimensions
	//
	// Returns:
	//   - Texture: the created texture handle
	CreateTexture(label string, data common.TextureData) Texture

	// CreateBindGroup binds buffers and/or textures against one of the shared
	// layouts. Resources must appear in binding order and match the layout kind:
	// LayoutUniform takes one buffer, LayoutTexture one texture, and
	// LayoutUniformPair two buffers.
	//
	// Parameters:
	//   - label: debug label for the bind group
	//   - kind: which shared layout the bind group targets
	//   - resources: the bound resources in binding order
	//
	// Returns:
	//   - BindGroup: the created bind group
	CreateBindGroup(label string, kind LayoutKind, resources ...any) BindGroup

	// BeginFrame acquires the next presentable surface texture and opens the
	// main render pass, clearing color and depth.
	//
	// Returns:
	//   - RenderPass: the open pass to record draws into
	//   - error: an error if the surface texture could not be acquired; the
	//     caller must skip the frame's draw submission entirely
	BeginFrame() (RenderPass, error)

	// EndFrame ends the render pass and submits the command buffer to the GPU.
	// Must be called after BeginFrame and all draw recording.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain
	// texture. Must be called once per successfully begun frame after EndFrame.
	Present()
}
