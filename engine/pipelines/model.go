package pipelines

import (
	_ "embed"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/kestrel3d/kestrel/common"
	"github.com/kestrel3d/kestrel/engine/camera"
	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

//go:embed shaders/model.wgsl
var modelShaderSource string

// ModelPipelineKey identifies the model pipeline's GPU pipeline object.
const ModelPipelineKey = "model"

// modelKey groups model instances sharing the same mesh and texture into one
// instance buffer. Texture 0 means "no texture" (default white texture).
type modelKey struct {
	Mesh    MeshID
	Texture ImageID
}

type meshGPU struct {
	vertexBuffer renderer.Buffer
	indexBuffer  renderer.Buffer
	indexCount   uint32
	radius       float32
}

func (m *meshGPU) release() {
	m.indexBuffer.Release()
	m.vertexBuffer.Release()
}

type textureGPU struct {
	texture renderer.Texture
	bind    renderer.BindGroup
}

func (t *textureGPU) release() {
	t.bind.Release()
	t.texture.Release()
}

// ModelPipeline draws lit, textured mesh instances grouped by (mesh, texture)
// batch key. Mesh and texture GPU copies live in per-pipeline caches pruned
// every frame to the set the current entity set references.
type ModelPipeline struct {
	meshStorage    map[MeshID]*meshGPU
	textureStorage map[ImageID]*textureGPU
	batches        *renderer.BatchMap[modelKey]

	cullingEnabled bool

	// packPool fans the per-key instance record packing out across reusable
	// workers; a WaitGroup provides the per-frame barrier.
	packPool    worker.DynamicWorkerPool
	packWorkers int
}

var _ renderer.Pipeline = &ModelPipeline{}

// ModelPipelineOption is a functional option for configuring a ModelPipeline.
type ModelPipelineOption func(*ModelPipeline)

// WithFrustumCulling enables CPU-side bounding sphere culling against the
// active camera's view frustum during prep.
//
// Returns:
//   - ModelPipelineOption: option function to apply
func WithFrustumCulling() ModelPipelineOption {
	return func(p *ModelPipeline) {
		p.cullingEnabled = true
	}
}

// WithPackWorkers overrides the number of workers used for parallel instance
// record packing.
//
// Parameters:
//   - workers: worker count (minimum 1)
//
// Returns:
//   - ModelPipelineOption: option function to apply
func WithPackWorkers(workers int) ModelPipelineOption {
	return func(p *ModelPipeline) {
		p.packWorkers = max(workers, 1)
	}
}

// NewModelPipeline creates the model pipeline. GPU state is allocated later
// in Init.
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - *ModelPipeline: the configured pipeline
func NewModelPipeline(options ...ModelPipelineOption) *ModelPipeline {
	p := &ModelPipeline{
		meshStorage:    make(map[MeshID]*meshGPU),
		textureStorage: make(map[ImageID]*textureGPU),
		batches:        renderer.NewBatchMap[modelKey]("Model", 128),
		packWorkers:    max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(p)
	}
	// Queue size of 256 accommodates typical batch key counts with headroom.
	p.packPool = worker.NewDynamicWorkerPool(p.packWorkers, 256, 1*time.Second)
	return p
}

func (p *ModelPipeline) Key() string {
	return ModelPipelineKey
}

func (p *ModelPipeline) Init(b renderer.Backend, shared *renderer.Shared) error {
	return b.RegisterPipeline(renderer.PipelineDescriptor{
		Key:          ModelPipelineKey,
		ShaderSource: modelShaderSource,
		VertexLayouts: []renderer.VertexLayout{
			{
				Stride:   32,
				StepMode: renderer.StepModeVertex,
				Attributes: []renderer.VertexAttribute{
					{Format: renderer.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: renderer.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					{Format: renderer.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
				},
			},
			{
				Stride:   128,
				StepMode: renderer.StepModeInstance,
				Attributes: []renderer.VertexAttribute{
					{Format: renderer.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 3},
					{Format: renderer.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 4},
					{Format: renderer.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 5},
					{Format: renderer.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 6},
					{Format: renderer.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 7},
					{Format: renderer.VertexFormatFloat32x3, Offset: 80, ShaderLocation: 8},
					{Format: renderer.VertexFormatFloat32x3, Offset: 92, ShaderLocation: 9},
					{Format: renderer.VertexFormatFloat32x3, Offset: 104, ShaderLocation: 10},
					{Format: renderer.VertexFormatFloat32x3, Offset: 116, ShaderLocation: 11},
				},
			},
		},
		BindGroupLayouts: []renderer.LayoutKind{renderer.LayoutUniform, renderer.LayoutTexture},
		Topology:         renderer.TopologyTriangleList,
		CullMode:         renderer.CullModeBack,
		DepthTest:        true,
		DepthWrite:       true,
	})
}

func (p *ModelPipeline) Prep(ctx *renderer.FrameContext) {
	frustum, hasFrustum := p.cullingFrustum(ctx)

	perKey := make(map[modelKey][]GPUModelInstance)
	meshesUsed := make(map[MeshID]bool)
	texturesUsed := make(map[ImageID]bool)

	ecs.Each2(ctx.World, func(e ecs.Entity, g *spatial.GlobalTransform, m *Model) bool {
		if m.Mesh == nil {
			return true
		}
		if hasFrustum && !p.visible(&frustum, g, m) {
			return true
		}

		meshesUsed[m.Mesh.ID()] = true
		if _, ok := p.meshStorage[m.Mesh.ID()]; !ok {
			p.uploadMesh(ctx.Backend, m.Mesh)
		}

		var textureID ImageID
		if m.Texture != nil {
			textureID = m.Texture.ID()
			texturesUsed[textureID] = true
			if _, ok := p.textureStorage[textureID]; !ok {
				p.uploadTexture(ctx.Backend, m.Texture)
			}
		}

		key := modelKey{Mesh: m.Mesh.ID(), Texture: textureID}
		perKey[key] = append(perKey[key], p.instanceRecord(g, m))
		return true
	})

	live := p.packBatches(perKey)
	p.batches.Reconcile(ctx.Backend, live)

	renderer.PruneCache(p.meshStorage, meshesUsed, func(m *meshGPU) { m.release() })
	renderer.PruneCache(p.textureStorage, texturesUsed, func(t *textureGPU) { t.release() })
}

func (p *ModelPipeline) Render(pass renderer.RenderPass, ctx *renderer.FrameContext) {
	cameraBind := ctx.Shared.ActiveCameraBind()
	if cameraBind == nil {
		log.Println("no active camera available for model pipeline")
		return
	}

	pass.SetPipeline(ModelPipelineKey)
	pass.SetBindGroup(0, cameraBind)

	p.batches.Each(func(k modelKey, ib *renderer.InstanceBuffer) {
		mesh, ok := p.meshStorage[k.Mesh]
		if !ok {
			panic(fmt.Sprintf("model batch references evicted mesh %d", k.Mesh))
		}

		textureBind := ctx.Shared.DefaultTextureBind()
		if k.Texture != 0 {
			texture, ok := p.textureStorage[k.Texture]
			if !ok {
				panic(fmt.Sprintf("model batch references evicted texture %d", k.Texture))
			}
			textureBind = texture.bind
		}

		pass.SetBindGroup(1, textureBind)
		pass.SetVertexBuffer(0, mesh.vertexBuffer)
		pass.SetIndexBuffer(mesh.indexBuffer)
		pass.SetVertexBuffer(1, ib.Buffer())
		pass.DrawIndexed(mesh.indexCount, ib.Count())
	})
}

// cullingFrustum extracts the active camera's view frustum for this frame,
// if culling is enabled and a perspective camera with a resolved pose exists.
func (p *ModelPipeline) cullingFrustum(ctx *renderer.FrameContext) (common.Frustum, bool) {
	if !p.cullingEnabled {
		return common.Frustum{}, false
	}
	active := ctx.Shared.ActiveCamera()
	if active == ecs.NilEntity {
		return common.Frustum{}, false
	}
	persp, ok := ecs.Get[camera.Perspective](ctx.World, active)
	if !ok {
		return common.Frustum{}, false
	}
	g, ok := ecs.Get[spatial.GlobalTransform](ctx.World, active)
	if !ok {
		return common.Frustum{}, false
	}

	projection := persp.Projection()
	var viewProj math32.Matrix4
	viewProj.MulMatrices(&projection, camera.ViewMatrix(g.Transform))
	var arr [16]float32
	viewProj.ToArray(arr[:], 0)
	return common.ExtractFrustumFromMatrix(arr[:]), true
}

func (p *ModelPipeline) visible(frustum *common.Frustum, g *spatial.GlobalTransform, m *Model) bool {
	scale := g.Scale.Mul(m.Scale)
	maxScale := math32.Max(math32.Abs(scale.X), math32.Max(math32.Abs(scale.Y), math32.Abs(scale.Z)))
	radius := m.Mesh.BoundsRadius() * maxScale
	t := g.Translation
	return frustum.ContainsSphere(t.X, t.Y, t.Z, radius)
}

func (p *ModelPipeline) instanceRecord(g *spatial.GlobalTransform, m *Model) GPUModelInstance {
	var record GPUModelInstance

	world := g.Matrix()
	world.ToArray(record.Transform[:], 0)

	// Normal matrix from the rotation only, so non-uniform scale never
	// distorts lighting normals.
	var rotation math32.Matrix4
	rotation.SetTransform(math32.Vector3{}, g.Rotation, math32.Vec3(1, 1, 1))
	var arr [16]float32
	rotation.ToArray(arr[:], 0)
	record.Normal = [9]float32{
		arr[0], arr[1], arr[2],
		arr[4], arr[5], arr[6],
		arr[8], arr[9], arr[10],
	}

	record.Color = m.Color
	record.Scale = [3]float32{m.Scale.X, m.Scale.Y, m.Scale.Z}
	return record
}

// packBatches marshals each key's record slice into upload-ready bytes,
// fanning keys out across the pack pool. Workers persist across frames; the
// WaitGroup is the per-frame barrier.
func (p *ModelPipeline) packBatches(perKey map[modelKey][]GPUModelInstance) map[modelKey][]byte {
	if len(perKey) == 0 {
		return nil
	}

	type job struct {
		key     modelKey
		records []GPUModelInstance
		data    []byte
	}
	jobs := make([]job, 0, len(perKey))
	for k, records := range perKey {
		jobs = append(jobs, job{key: k, records: records})
	}

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		j := &jobs[i]
		p.packPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				data := make([]byte, 0, len(j.records)*128)
				for r := range j.records {
					data = append(data, j.records[r].Marshal()...)
				}
				j.data = data
				return nil, nil
			},
		})
	}
	wg.Wait()

	live := make(map[modelKey][]byte, len(jobs))
	for i := range jobs {
		live[jobs[i].key] = jobs[i].data
	}
	return live
}

func (p *ModelPipeline) uploadMesh(b renderer.Backend, mesh *Mesh) {
	p.meshStorage[mesh.ID()] = &meshGPU{
		vertexBuffer: b.CreateBufferInit("Mesh Vertices", MarshalModelVertices(mesh.vertices), renderer.BufferUsageVertex),
		indexBuffer:  b.CreateBufferInit("Mesh Indices", MarshalIndices(mesh.indices), renderer.BufferUsageIndex),
		indexCount:   mesh.IndexCount(),
		radius:       mesh.BoundsRadius(),
	}
}

func (p *ModelPipeline) uploadTexture(b renderer.Backend, image *Image) {
	texture := b.CreateTexture("Model Texture", image.data)
	p.textureStorage[image.ID()] = &textureGPU{
		texture: texture,
		bind:    b.CreateBindGroup("Model Texture Bind Group", renderer.LayoutTexture, texture),
	}
}
