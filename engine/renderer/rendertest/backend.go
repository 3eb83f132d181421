// package rendertest provides an in-memory recording implementation of the
// renderer.Backend interface. It tracks resource lifecycles and records every
// draw call so pipeline batching and frame orchestration can be asserted on
// without a GPU.
package rendertest

import (
	"errors"
	"fmt"

	"github.com/kestrel3d/kestrel/common"
	"github.com/kestrel3d/kestrel/engine/renderer"
)

// Buffer is a fake GPU buffer that keeps its contents in memory.
type Buffer struct {
	Label    string
	Data     []byte
	Usage    renderer.BufferUsage
	Released bool
}

var _ renderer.Buffer = &Buffer{}

// Size returns the buffer's allocated size in bytes.
func (b *Buffer) Size() uint64 {
	return uint64(len(b.Data))
}

// Release marks the buffer as freed.
func (b *Buffer) Release() {
	b.Released = true
}

// Texture is a fake GPU texture.
type Texture struct {
	Label    string
	Width    uint32
	Height   uint32
	Released bool
}

var _ renderer.Texture = &Texture{}

// Release marks the texture as freed.
func (t *Texture) Release() {
	t.Released = true
}

// BindGroup is a fake bind group remembering its layout kind and resources.
type BindGroup struct {
	Label     string
	Kind      renderer.LayoutKind
	Resources []any
	Released  bool
}

var _ renderer.BindGroup = &BindGroup{}

// Release marks the bind group as freed.
func (bg *BindGroup) Release() {
	bg.Released = true
}

// Draw is one recorded draw call together with the pipeline and buffers
// bound at the time it was issued.
type Draw struct {
	Pipeline      string
	Indexed       bool
	IndexCount    uint32
	VertexCount   uint32
	InstanceCount uint32
	BindGroups    map[uint32]renderer.BindGroup
	VertexBuffers map[uint32]renderer.Buffer
	IndexBuffer   renderer.Buffer
}

// Pass records draws issued within one frame.
type Pass struct {
	backend *Backend

	pipeline      string
	bindGroups    map[uint32]renderer.BindGroup
	vertexBuffers map[uint32]renderer.Buffer
	indexBuffer   renderer.Buffer
}

var _ renderer.RenderPass = &Pass{}

func (p *Pass) SetPipeline(key string) {
	if !p.backend.pipelines[key] {
		panic(fmt.Sprintf("render pipeline %s was never registered", key))
	}
	p.pipeline = key
	p.backend.PipelineOrder = append(p.backend.PipelineOrder, key)
}

func (p *Pass) SetBindGroup(index uint32, bg renderer.BindGroup) {
	p.bindGroups[index] = bg
}

func (p *Pass) SetVertexBuffer(slot uint32, buf renderer.Buffer) {
	p.vertexBuffers[slot] = buf
}

func (p *Pass) SetIndexBuffer(buf renderer.Buffer) {
	p.indexBuffer = buf
}

func (p *Pass) DrawIndexed(indexCount, instanceCount uint32) {
	p.record(Draw{
		Pipeline:      p.pipeline,
		Indexed:       true,
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
	})
}

func (p *Pass) Draw(vertexCount, instanceCount uint32) {
	p.record(Draw{
		Pipeline:      p.pipeline,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
	})
}

func (p *Pass) record(d Draw) {
	d.BindGroups = make(map[uint32]renderer.BindGroup, len(p.bindGroups))
	for i, bg := range p.bindGroups {
		d.BindGroups[i] = bg
	}
	d.VertexBuffers = make(map[uint32]renderer.Buffer, len(p.vertexBuffers))
	for s, b := range p.vertexBuffers {
		d.VertexBuffers[s] = b
	}
	d.IndexBuffer = p.indexBuffer
	p.backend.Draws = append(p.backend.Draws, d)
}

// Backend is the recording fake. Zero value is not usable; call NewBackend.
type Backend struct {
	// FailAcquire makes BeginFrame return an error, simulating a momentarily
	// unavailable surface.
	FailAcquire bool

	// Recorded state, readable by tests.
	Buffers       []*Buffer
	Textures      []*Texture
	BindGroups    []*BindGroup
	Draws         []Draw
	PipelineOrder []string
	Writes        int
	Frames        int
	EndedFrames   int
	Presents      int
	Configures    int
	ClearColor    [4]float64

	pipelines map[string]bool
}

var _ renderer.Backend = &Backend{}

// NewBackend creates an empty recording backend with the renderer's default
// clear color.
func NewBackend() *Backend {
	return &Backend{
		ClearColor: [4]float64{0.2, 0.2, 0.2, 1},
		pipelines:  make(map[string]bool),
	}
}

func (b *Backend) Configure(width, height uint32) {
	b.Configures++
}

func (b *Backend) SetPresentMode(mode renderer.PresentMode) {}

func (b *Backend) SetClearColor(r, g, bl, a float64) {
	b.ClearColor = [4]float64{r, g, bl, a}
}

func (b *Backend) RegisterPipeline(desc renderer.PipelineDescriptor) error {
	if desc.Key == "" {
		return errors.New("pipeline descriptor missing key")
	}
	b.pipelines[desc.Key] = true
	return nil
}

func (b *Backend) CreateBuffer(label string, size uint64, usage renderer.BufferUsage) renderer.Buffer {
	buf := &Buffer{Label: label, Data: make([]byte, size), Usage: usage}
	b.Buffers = append(b.Buffers, buf)
	return buf
}

func (b *Backend) CreateBufferInit(label string, data []byte, usage renderer.BufferUsage) renderer.Buffer {
	buf := &Buffer{Label: label, Data: append([]byte(nil), data...), Usage: usage}
	b.Buffers = append(b.Buffers, buf)
	return buf
}

func (b *Backend) WriteBuffer(buf renderer.Buffer, offset uint64, data []byte) {
	fb := buf.(*Buffer)
	if fb.Released {
		panic("write to released buffer " + fb.Label)
	}
	copy(fb.Data[offset:], data)
	b.Writes++
}

func (b *Backend) CreateTexture(label string, data common.TextureData) renderer.Texture {
	tex := &Texture{Label: label, Width: data.Width, Height: data.Height}
	b.Textures = append(b.Textures, tex)
	return tex
}

func (b *Backend) CreateBindGroup(label string, kind renderer.LayoutKind, resources ...any) renderer.BindGroup {
	bg := &BindGroup{Label: label, Kind: kind, Resources: resources}
	b.BindGroups = append(b.BindGroups, bg)
	return bg
}

func (b *Backend) BeginFrame() (renderer.RenderPass, error) {
	if b.FailAcquire {
		return nil, errors.New("surface texture unavailable")
	}
	b.Frames++
	return &Pass{
		backend:       b,
		bindGroups:    make(map[uint32]renderer.BindGroup),
		vertexBuffers: make(map[uint32]renderer.Buffer),
	}, nil
}

func (b *Backend) EndFrame() {
	b.EndedFrames++
}

func (b *Backend) Present() {
	b.Presents++
}

// LiveBuffers returns the count of created-but-not-released buffers.
func (b *Backend) LiveBuffers() int {
	n := 0
	for _, buf := range b.Buffers {
		if !buf.Released {
			n++
		}
	}
	return n
}

// LiveTextures returns the count of created-but-not-released textures.
func (b *Backend) LiveTextures() int {
	n := 0
	for _, t := range b.Textures {
		if !t.Released {
			n++
		}
	}
	return n
}

// LiveBindGroups returns the count of created-but-not-released bind groups.
func (b *Backend) LiveBindGroups() int {
	n := 0
	for _, bg := range b.BindGroups {
		if !bg.Released {
			n++
		}
	}
	return n
}

// DrawsFor filters the recorded draws down to one pipeline key.
//
// Parameters:
//   - key: the pipeline key to filter by
//
// Returns:
//   - []Draw: draws issued under that pipeline, in order
func (b *Backend) DrawsFor(key string) []Draw {
	var out []Draw
	for _, d := range b.Draws {
		if d.Pipeline == key {
			out = append(out, d)
		}
	}
	return out
}

// Reset clears the per-frame recordings (draws and pipeline order) while
// keeping resources and pipelines, so tests can assert one frame at a time.
func (b *Backend) Reset() {
	b.Draws = nil
	b.PipelineOrder = nil
}
