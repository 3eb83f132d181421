package pipelines

import (
	_ "embed"
	"fmt"
	"log"

	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// SpritePipelineKey identifies the sprite pipeline's GPU pipeline object.
const SpritePipelineKey = "sprite"

// SpritePipeline draws textured 2D quads in world space, batched by texture.
// All sprites share one quad mesh; per-instance records carry size, transform
// and color.
type SpritePipeline struct {
	quadVertices renderer.Buffer
	quadIndices  renderer.Buffer
	indexCount   uint32

	textureStorage map[ImageID]*textureGPU
	batches        *renderer.BatchMap[ImageID]
}

var _ renderer.Pipeline = &SpritePipeline{}

// NewSpritePipeline creates the sprite pipeline. GPU state is allocated later
// in Init.
//
// Returns:
//   - *SpritePipeline: the pipeline
func NewSpritePipeline() *SpritePipeline {
	return &SpritePipeline{
		textureStorage: make(map[ImageID]*textureGPU),
		batches:        renderer.NewBatchMap[ImageID]("Sprite", 96),
	}
}

func (p *SpritePipeline) Key() string {
	return SpritePipelineKey
}

func (p *SpritePipeline) Init(b renderer.Backend, shared *renderer.Shared) error {
	err := b.RegisterPipeline(renderer.PipelineDescriptor{
		Key:          SpritePipelineKey,
		ShaderSource: spriteShaderSource,
		VertexLayouts: []renderer.VertexLayout{
			{
				Stride:   20,
				StepMode: renderer.StepModeVertex,
				Attributes: []renderer.VertexAttribute{
					{Format: renderer.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: renderer.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
				},
			},
			{
				Stride:   96,
				StepMode: renderer.StepModeInstance,
				Attributes: []renderer.VertexAttribute{
					{Format: renderer.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 2},
					{Format: renderer.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 3},
					{Format: renderer.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 4},
					{Format: renderer.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 5},
					{Format: renderer.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 6},
					{Format: renderer.VertexFormatFloat32x4, Offset: 80, ShaderLocation: 7},
				},
			},
		},
		BindGroupLayouts: []renderer.LayoutKind{renderer.LayoutUniform, renderer.LayoutTexture},
		Topology:         renderer.TopologyTriangleList,
		CullMode:         renderer.CullModeNone,
		DepthTest:        true,
		DepthWrite:       true,
		Blend:            true,
	})
	if err != nil {
		return err
	}

	quad := renderer.QuadVertices()
	indices := renderer.QuadIndices()
	p.quadVertices = b.CreateBufferInit("Sprite Quad Vertices", renderer.MarshalVertices(quad), renderer.BufferUsageVertex)
	p.quadIndices = b.CreateBufferInit("Sprite Quad Indices", MarshalIndices(indices), renderer.BufferUsageIndex)
	p.indexCount = uint32(len(indices))
	return nil
}

func (p *SpritePipeline) Prep(ctx *renderer.FrameContext) {
	perTexture := make(map[ImageID][]byte)
	texturesUsed := make(map[ImageID]bool)

	ecs.Each2(ctx.World, func(e ecs.Entity, g *spatial.GlobalTransform, s *Sprite) bool {
		if s.Texture == nil {
			return true
		}
		id := s.Texture.ID()
		texturesUsed[id] = true
		if _, ok := p.textureStorage[id]; !ok {
			p.uploadTexture(ctx.Backend, s.Texture)
		}

		record := GPUSpriteInstance{
			Size:  [2]float32{s.Size.X, s.Size.Y},
			Color: s.Color,
		}
		world := g.Matrix()
		world.ToArray(record.Transform[:], 0)

		perTexture[id] = append(perTexture[id], record.Marshal()...)
		return true
	})

	p.batches.Reconcile(ctx.Backend, perTexture)
	renderer.PruneCache(p.textureStorage, texturesUsed, func(t *textureGPU) { t.release() })
}

func (p *SpritePipeline) Render(pass renderer.RenderPass, ctx *renderer.FrameContext) {
	cameraBind := ctx.Shared.ActiveCameraBind()
	if cameraBind == nil {
		log.Println("no active camera available for sprite pipeline")
		return
	}

	pass.SetPipeline(SpritePipelineKey)
	pass.SetBindGroup(0, cameraBind)
	pass.SetVertexBuffer(0, p.quadVertices)
	pass.SetIndexBuffer(p.quadIndices)

	p.batches.Each(func(id ImageID, ib *renderer.InstanceBuffer) {
		texture, ok := p.textureStorage[id]
		if !ok {
			panic(fmt.Sprintf("sprite batch references evicted texture %d", id))
		}
		pass.SetBindGroup(1, texture.bind)
		pass.SetVertexBuffer(1, ib.Buffer())
		pass.DrawIndexed(p.indexCount, ib.Count())
	})
}

func (p *SpritePipeline) uploadTexture(b renderer.Backend, image *Image) {
	texture := b.CreateTexture("Sprite Texture", image.data)
	p.textureStorage[image.ID()] = &textureGPU{
		texture: texture,
		bind:    b.CreateBindGroup("Sprite Texture Bind Group", renderer.LayoutTexture, texture),
	}
}
