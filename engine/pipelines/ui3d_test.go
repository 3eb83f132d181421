package pipelines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/pipelines"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/renderer/rendertest"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

func newUIRenderer(t *testing.T, b *rendertest.Backend) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(0, pipelines.NewUI3DPipeline()),
	)
	require.NoError(t, err)
	return r
}

func addMenu(w *ecs.World, options ...string) ecs.Entity {
	e := w.Create()
	ecs.Set(w, e, pipelines.NewUI3D(options...))
	ecs.Set(w, e, spatial.GlobalTransform{Transform: spatial.At(0, 0, -5)})
	return e
}

func TestUIDrawsPanelAndText(t *testing.T) {
	b := rendertest.NewBackend()
	r := newUIRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	addMenu(w, "Start", "Quit")

	r.Tick(w)

	panels := b.DrawsFor(pipelines.UI3DPipelineKey)
	require.Len(t, panels, 1)
	assert.Equal(t, uint32(4), panels[0].VertexCount)
	assert.Equal(t, uint32(1), panels[0].InstanceCount)

	texts := b.DrawsFor(pipelines.UI3DTextPipelineKey)
	require.Len(t, texts, 1)
	// One glyph quad per non-space character: "Start" + "Quit".
	assert.Equal(t, uint32(9), texts[0].InstanceCount)
}

func TestUIBillboardsTowardCamera(t *testing.T) {
	b := rendertest.NewBackend()
	r := newUIRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w) // at (0, 0, 10)
	menu := addMenu(w, "Start")

	before, _ := ecs.Get[spatial.GlobalTransform](w, menu)
	r.Tick(w)
	after, ok := ecs.Get[spatial.GlobalTransform](w, menu)
	require.True(t, ok)

	assert.Equal(t, before.Translation, after.Translation, "billboarding must not move the panel")
	assert.NotEqual(t, before.Rotation, after.Rotation, "panel must be rotated to face the camera")
}

func TestUIBundleLifecycleFollowsEntity(t *testing.T) {
	b := rendertest.NewBackend()
	r := newUIRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	menu := addMenu(w, "Start", "Quit")

	r.Tick(w)
	liveBuffers := b.LiveBuffers()
	liveBindGroups := b.LiveBindGroups()

	// Unchanged entity set: no new allocations.
	r.Tick(w)
	assert.Equal(t, liveBuffers, b.LiveBuffers())
	assert.Equal(t, liveBindGroups, b.LiveBindGroups())

	// Removing the UI component destroys the whole per-entity bundle:
	// panel + placement uniforms, glyph buffer, and both bind groups.
	ecs.Remove[pipelines.UI3D](w, menu)
	b.Reset()
	r.Tick(w)

	assert.Equal(t, liveBuffers-3, b.LiveBuffers())
	assert.Equal(t, liveBindGroups-2, b.LiveBindGroups())
	assert.Empty(t, b.DrawsFor(pipelines.UI3DPipelineKey))
}

func TestUISkipsPrepWithoutCamera(t *testing.T) {
	b := rendertest.NewBackend()
	r := newUIRenderer(t, b)

	w := ecs.NewWorld()
	addMenu(w, "Start")

	buffersBefore := len(b.Buffers)
	r.Tick(w)

	// No camera: prep is skipped entirely, so no per-entity bundle appears.
	assert.Equal(t, buffersBefore, len(b.Buffers))
	assert.Empty(t, b.DrawsFor(pipelines.UI3DPipelineKey))
	assert.Empty(t, b.DrawsFor(pipelines.UI3DTextPipelineKey))
}

func TestUISelectionBandTracksSelectedOption(t *testing.T) {
	b := rendertest.NewBackend()
	r := newUIRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	menu := addMenu(w, "One", "Two", "Three", "Four")
	ui, _ := ecs.Get[pipelines.UI3D](w, menu)
	ui.Selected = 2
	ecs.Set(w, menu, ui)

	r.Tick(w)

	// The panel uniform buffer holds the normalized selection band
	// [0.5, 0.75) for option index 2 of 4 at offset 48.
	var panelBuf *rendertest.Buffer
	for _, buf := range b.Buffers {
		if buf.Label == "Ui Panel Uniform" {
			panelBuf = buf
		}
	}
	require.NotNil(t, panelBuf)

	var uniform pipelines.GPUPanelUniform
	uniform.SelectionRange = [2]float32{0.5, 0.75}
	expected := uniform.Marshal()[48:56]
	assert.Equal(t, expected, panelBuf.Data[48:56])
}
