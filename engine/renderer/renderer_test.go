package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/engine/camera"
	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/renderer/rendertest"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

// recordingPipeline logs its prep and render invocations into a shared trace.
type recordingPipeline struct {
	key   string
	trace *[]string
}

func (p *recordingPipeline) Key() string { return p.key }

func (p *recordingPipeline) Init(b renderer.Backend, shared *renderer.Shared) error {
	return nil
}

func (p *recordingPipeline) Prep(ctx *renderer.FrameContext) {
	*p.trace = append(*p.trace, "prep:"+p.key)
}

func (p *recordingPipeline) Render(pass renderer.RenderPass, ctx *renderer.FrameContext) {
	*p.trace = append(*p.trace, "render:"+p.key)
}

func TestTickRunsPipelinesInAscendingPriority(t *testing.T) {
	b := rendertest.NewBackend()
	var trace []string

	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(20, &recordingPipeline{key: "late", trace: &trace}),
		renderer.WithPipeline(0, &recordingPipeline{key: "early", trace: &trace}),
		renderer.WithPipeline(10, &recordingPipeline{key: "mid", trace: &trace}),
	)
	require.NoError(t, err)

	r.Tick(ecs.NewWorld())

	assert.Equal(t, []string{
		"prep:early", "prep:mid", "prep:late",
		"render:early", "render:mid", "render:late",
	}, trace)
	assert.Equal(t, 1, b.Frames)
	assert.Equal(t, 1, b.EndedFrames)
	assert.Equal(t, 1, b.Presents)
}

func TestTickBreaksPriorityTiesByRegistrationOrder(t *testing.T) {
	b := rendertest.NewBackend()
	var trace []string

	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(5, &recordingPipeline{key: "first", trace: &trace}),
		renderer.WithPipeline(5, &recordingPipeline{key: "second", trace: &trace}),
	)
	require.NoError(t, err)

	r.Tick(ecs.NewWorld())

	assert.Equal(t, []string{"prep:first", "prep:second", "render:first", "render:second"}, trace)
}

func TestTickSkipsFrameWhenSurfaceUnavailable(t *testing.T) {
	b := rendertest.NewBackend()
	b.FailAcquire = true
	var trace []string

	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(0, &recordingPipeline{key: "p", trace: &trace}),
	)
	require.NoError(t, err)

	r.Tick(ecs.NewWorld())

	assert.Equal(t, []string{"prep:p"}, trace, "prep runs, render must not")
	assert.Equal(t, 0, b.EndedFrames)
	assert.Equal(t, 0, b.Presents)

	// Surface back: the next tick renders normally off the kept prep state.
	b.FailAcquire = false
	r.Tick(ecs.NewWorld())
	assert.Equal(t, []string{"prep:p", "prep:p", "render:p"}, trace)
	assert.Equal(t, 1, b.Presents)
}

func TestNewRendererAllocatesDefaultTexture(t *testing.T) {
	b := rendertest.NewBackend()

	r, err := renderer.NewRenderer(b)
	require.NoError(t, err)

	assert.Equal(t, 1, b.LiveTextures())
	require.NotNil(t, r.Shared().DefaultTextureBind())
	assert.Equal(t, ecs.NilEntity, r.Shared().ActiveCamera())
	assert.Nil(t, r.Shared().ActiveCameraBind())
}

func TestCameraSyncCreatesWritesAndPrunes(t *testing.T) {
	b := rendertest.NewBackend()
	r, err := renderer.NewRenderer(b)
	require.NoError(t, err)

	w := ecs.NewWorld()
	cam := w.Create()
	ecs.Set(w, cam, camera.NewPerspective())
	ecs.Set(w, cam, spatial.GlobalTransform{Transform: spatial.At(0, 2, 5)})

	r.Tick(w)

	require.Equal(t, cam, r.Shared().ActiveCamera())
	bind, ok := r.Shared().CameraBind(cam)
	require.True(t, ok)
	assert.NotNil(t, bind)
	assert.Equal(t, 1, b.LiveBuffers())
	writesAfterFirst := b.Writes

	// A second tick refreshes the same buffer in place.
	r.Tick(w)
	assert.Equal(t, 1, b.LiveBuffers())
	assert.Equal(t, writesAfterFirst+1, b.Writes)

	// Destroying the camera entity releases its GPU state on the next tick.
	w.Destroy(cam)
	r.Tick(w)
	assert.Equal(t, 0, b.LiveBuffers())
	assert.Equal(t, ecs.NilEntity, r.Shared().ActiveCamera())
	_, ok = r.Shared().CameraBind(cam)
	assert.False(t, ok)
}

func TestCameraSyncIgnoresInactiveCameras(t *testing.T) {
	b := rendertest.NewBackend()
	r, err := renderer.NewRenderer(b)
	require.NoError(t, err)

	w := ecs.NewWorld()
	inactive := w.Create()
	ecs.Set(w, inactive, camera.NewPerspective(camera.WithActive(false)))
	ecs.Set(w, inactive, spatial.GlobalTransform{Transform: spatial.NewTransform()})

	r.Tick(w)

	assert.Equal(t, ecs.NilEntity, r.Shared().ActiveCamera())
	// Inactive cameras still get their uniform synced.
	_, ok := r.Shared().CameraBind(inactive)
	assert.True(t, ok)
}

func TestResizeReconfiguresBackend(t *testing.T) {
	b := rendertest.NewBackend()
	r, err := renderer.NewRenderer(b)
	require.NoError(t, err)

	r.Resize(1280, 720)
	assert.Equal(t, 1, b.Configures)
}

func TestWithClearColorOverridesDefault(t *testing.T) {
	b := rendertest.NewBackend()
	_, err := renderer.NewRenderer(b, renderer.WithClearColor(0, 0, 0.5, 1))
	require.NoError(t, err)

	assert.Equal(t, [4]float64{0, 0, 0.5, 1}, b.ClearColor)
}
