package pipelines

import (
	_ "embed"
	"log"

	"cogentcore.org/core/math32"

	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

//go:embed shaders/ui3d.wgsl
var ui3dShaderSource string

//go:embed shaders/ui3d_text.wgsl
var ui3dTextShaderSource string

// UI3DPipelineKey identifies the UI panel pipeline's GPU pipeline object.
const UI3DPipelineKey = "ui3d"

// UI3DTextPipelineKey identifies the UI text pipeline's GPU pipeline object.
const UI3DTextPipelineKey = "ui3d_text"

// uiData is the per-entity GPU bundle: panel and placement uniforms, their
// bind groups, and the laid-out glyph geometry. Created lazily on first sight
// of a UI3D entity and destroyed when the entity's component disappears.
type uiData struct {
	panelBuffer     renderer.Buffer
	placementBuffer renderer.Buffer
	panelBind       renderer.BindGroup
	placementBind   renderer.BindGroup

	text *renderer.InstanceBuffer
}

func (d *uiData) release() {
	d.text.Release()
	d.placementBind.Release()
	d.panelBind.Release()
	d.placementBuffer.Release()
	d.panelBuffer.Release()
}

// UI3DPipeline draws billboarded option menus: a translucent panel quad with a
// selection highlight band, plus atlas-rendered text lines. Unlike the model
// and sprite pipelines it keys GPU state by entity identity, one uniform
// bundle per live UI3D entity.
type UI3DPipeline struct {
	atlas     *TextAtlas
	instances map[ecs.Entity]*uiData

	textColor [4]float32
}

var _ renderer.Pipeline = &UI3DPipeline{}

// UI3DPipelineOption is a functional option for configuring a UI3DPipeline.
type UI3DPipelineOption func(*UI3DPipeline)

// WithTextColor overrides the default white menu text color.
//
// Parameters:
//   - r, g, b, a: text color channels in [0, 1]
//
// Returns:
//   - UI3DPipelineOption: option function to apply
func WithTextColor(r, g, b, a float32) UI3DPipelineOption {
	return func(p *UI3DPipeline) {
		p.textColor = [4]float32{r, g, b, a}
	}
}

// NewUI3DPipeline creates the UI pipeline. The glyph atlas and GPU pipelines
// are allocated later in Init.
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - *UI3DPipeline: the configured pipeline
func NewUI3DPipeline(options ...UI3DPipelineOption) *UI3DPipeline {
	p := &UI3DPipeline{
		instances: make(map[ecs.Entity]*uiData),
		textColor: [4]float32{1, 1, 1, 1},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *UI3DPipeline) Key() string {
	return UI3DPipelineKey
}

func (p *UI3DPipeline) Init(b renderer.Backend, shared *renderer.Shared) error {
	err := b.RegisterPipeline(renderer.PipelineDescriptor{
		Key:              UI3DPipelineKey,
		ShaderSource:     ui3dShaderSource,
		BindGroupLayouts: []renderer.LayoutKind{renderer.LayoutUniform, renderer.LayoutUniformPair},
		Topology:         renderer.TopologyTriangleStrip,
		CullMode:         renderer.CullModeBack,
		DepthTest:        false,
		DepthWrite:       false,
		Blend:            true,
	})
	if err != nil {
		return err
	}

	err = b.RegisterPipeline(renderer.PipelineDescriptor{
		Key:          UI3DTextPipelineKey,
		ShaderSource: ui3dTextShaderSource,
		VertexLayouts: []renderer.VertexLayout{
			{
				Stride:   48,
				StepMode: renderer.StepModeInstance,
				Attributes: []renderer.VertexAttribute{
					{Format: renderer.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
					{Format: renderer.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1},
					{Format: renderer.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 2},
				},
			},
		},
		BindGroupLayouts: []renderer.LayoutKind{renderer.LayoutUniform, renderer.LayoutTexture, renderer.LayoutUniform},
		Topology:         renderer.TopologyTriangleStrip,
		CullMode:         renderer.CullModeBack,
		DepthTest:        false,
		DepthWrite:       false,
		Blend:            true,
	})
	if err != nil {
		return err
	}

	p.atlas = NewTextAtlas(b)
	return nil
}

func (p *UI3DPipeline) Prep(ctx *renderer.FrameContext) {
	active := ctx.Shared.ActiveCamera()
	if active == ecs.NilEntity {
		log.Println("no active camera available for ui pipeline prep")
		return
	}
	cameraGlobal, ok := ecs.Get[spatial.GlobalTransform](ctx.World, active)
	if !ok {
		log.Println("active camera has no resolved pose, skipping ui pipeline prep")
		return
	}
	cameraPos := cameraGlobal.Translation

	// Camera-facing takes precedence over whatever the spatial passes
	// resolved: every UI panel is rotated to look at the camera in place.
	ecs.Each2(ctx.World, func(e ecs.Entity, g *spatial.GlobalTransform, ui *UI3D) bool {
		g.LookAt(cameraPos, math32.Vec3(0, 1, 0))
		return true
	})

	stale := make(map[ecs.Entity]bool, len(p.instances))
	for e := range p.instances {
		stale[e] = true
	}

	ecs.Each2(ctx.World, func(e ecs.Entity, ui *UI3D, g *spatial.GlobalTransform) bool {
		delete(stale, e)

		data, ok := p.instances[e]
		if !ok {
			data = p.insertUI(ctx.Backend)
			p.instances[e] = data
		}

		var placement GPUPlacementUniform
		world := g.Matrix()
		world.ToArray(placement.Transform[:], 0)
		ctx.Backend.WriteBuffer(data.placementBuffer, 0, placement.Marshal())

		panel := p.panelUniform(ui)
		ctx.Backend.WriteBuffer(data.panelBuffer, 0, panel.Marshal())

		glyphs := p.atlas.Layout(ui.Options, ui.FontSize, p.textColor)
		data.text.Update(ctx.Backend, MarshalGlyphs(glyphs), 48)
		return true
	})

	for e := range stale {
		p.instances[e].release()
		delete(p.instances, e)
	}
}

func (p *UI3DPipeline) Render(pass renderer.RenderPass, ctx *renderer.FrameContext) {
	cameraBind := ctx.Shared.ActiveCameraBind()
	if cameraBind == nil {
		log.Println("no active camera available for ui pipeline")
		return
	}
	if len(p.instances) == 0 {
		return
	}

	// Panel backgrounds first.
	pass.SetPipeline(UI3DPipelineKey)
	pass.SetBindGroup(0, cameraBind)
	for _, data := range p.instances {
		pass.SetBindGroup(1, data.panelBind)
		pass.Draw(4, 1)
	}

	// Text on top.
	pass.SetPipeline(UI3DTextPipelineKey)
	pass.SetBindGroup(0, cameraBind)
	pass.SetBindGroup(1, p.atlas.Bind())
	for _, data := range p.instances {
		if data.text.Count() == 0 {
			continue
		}
		pass.SetVertexBuffer(0, data.text.Buffer())
		pass.SetBindGroup(2, data.placementBind)
		pass.Draw(4, data.text.Count())
	}
}

// panelUniform derives the panel extents and selection band from the menu
// contents: one fontSize-tall row per option, width fitted to the longest
// line, and a normalized top-down Y band behind the selected row.
func (p *UI3DPipeline) panelUniform(ui *UI3D) GPUPanelUniform {
	longest := 0
	for _, option := range ui.Options {
		if len(option) > longest {
			longest = len(option)
		}
	}

	optionCount := len(ui.Options)
	uniform := GPUPanelUniform{
		MenuColor:      ui.MenuColor,
		SelectionColor: ui.SelectionColor,
	}
	if optionCount == 0 {
		return uniform
	}

	uniform.Size = [2]float32{
		ui.FontSize * p.atlas.GlyphAspect() * float32(longest),
		ui.FontSize * float32(optionCount),
	}

	selected := min(int(ui.Selected), optionCount-1)
	optionRange := 1.0 / float32(optionCount)
	uniform.SelectionRange = [2]float32{
		optionRange * float32(selected),
		optionRange * float32(selected+1),
	}
	return uniform
}

func (p *UI3DPipeline) insertUI(b renderer.Backend) *uiData {
	var panel GPUPanelUniform
	var placement GPUPlacementUniform
	panelBuffer := b.CreateBufferInit("Ui Panel Uniform", panel.Marshal(), renderer.BufferUsageUniform)
	placementBuffer := b.CreateBufferInit("Ui Placement Uniform", placement.Marshal(), renderer.BufferUsageUniform)

	return &uiData{
		panelBuffer:     panelBuffer,
		placementBuffer: placementBuffer,
		panelBind:       b.CreateBindGroup("Ui Panel Bind Group", renderer.LayoutUniformPair, panelBuffer, placementBuffer),
		placementBind:   b.CreateBindGroup("Ui Placement Bind Group", renderer.LayoutUniform, placementBuffer),
		text:            renderer.NewInstanceBuffer("Ui Text Glyphs"),
	}
}
