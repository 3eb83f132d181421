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

func addModel(w *ecs.World, mesh *pipelines.Mesh, texture *pipelines.Image, x float32) ecs.Entity {
	e := w.Create()
	ecs.Set(w, e, pipelines.NewModel(mesh, texture))
	ecs.Set(w, e, spatial.GlobalTransform{Transform: spatial.At(x, 0, 0)})
	return e
}

func newModelRenderer(t *testing.T, b *rendertest.Backend, options ...pipelines.ModelPipelineOption) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(0, pipelines.NewModelPipeline(options...)),
	)
	require.NoError(t, err)
	return r
}

func TestModelSharedKeyDrawsOneInstancedBatch(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	cube := pipelines.CubeMesh()
	tex := testImage(t)
	for i := range 5 {
		addModel(w, cube, tex, float32(i))
	}

	r.Tick(w)

	draws := b.DrawsFor(pipelines.ModelPipelineKey)
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Indexed)
	assert.Equal(t, uint32(36), draws[0].IndexCount)
	assert.Equal(t, uint32(5), draws[0].InstanceCount)
}

func TestModelSplitsBatchesByMeshAndTexture(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	cube := pipelines.CubeMesh()
	plane := pipelines.PlaneMesh(2, 2)
	tex := testImage(t)

	addModel(w, cube, tex, 0)
	addModel(w, cube, nil, 1)
	addModel(w, plane, tex, 2)

	r.Tick(w)

	draws := b.DrawsFor(pipelines.ModelPipelineKey)
	assert.Len(t, draws, 3)
}

func TestModelPrepIsIdempotent(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	cube := pipelines.CubeMesh()
	addModel(w, cube, testImage(t), 0)
	addModel(w, cube, nil, 1)

	r.Tick(w)
	buffersAfterFirst := len(b.Buffers)
	texturesAfterFirst := len(b.Textures)
	liveAfterFirst := b.LiveBuffers()

	r.Tick(w)
	r.Tick(w)

	assert.Equal(t, buffersAfterFirst, len(b.Buffers), "an unchanged entity set must not allocate")
	assert.Equal(t, texturesAfterFirst, len(b.Textures))
	assert.Equal(t, liveAfterFirst, b.LiveBuffers())
}

func TestModelEvictionReleasesMeshAndTexture(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	cube := pipelines.CubeMesh()
	plane := pipelines.PlaneMesh(2, 2)
	keepTex := testImage(t)
	loneTex := testImage(t)

	addModel(w, cube, keepTex, 0)
	lone := addModel(w, plane, loneTex, 1)

	r.Tick(w)
	liveBuffers := b.LiveBuffers()
	liveTextures := b.LiveTextures()

	w.Destroy(lone)
	b.Reset()
	r.Tick(w)

	draws := b.DrawsFor(pipelines.ModelPipelineKey)
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(1), draws[0].InstanceCount)

	// The lone model's instance buffer, mesh buffers and texture are all gone.
	assert.Equal(t, liveBuffers-3, b.LiveBuffers())
	assert.Equal(t, liveTextures-1, b.LiveTextures())
}

func TestModelFrustumCullingDropsOffscreenInstances(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b, pipelines.WithFrustumCulling(), pipelines.WithPackWorkers(1))

	w := ecs.NewWorld()
	addCamera(w) // looking down -Z from (0, 0, 10)
	cube := pipelines.CubeMesh()

	addModel(w, cube, nil, 0)
	// Far outside the frustum: beyond the far plane behind the camera.
	behind := w.Create()
	ecs.Set(w, behind, pipelines.NewModel(cube, nil))
	ecs.Set(w, behind, spatial.GlobalTransform{Transform: spatial.At(0, 0, 500)})

	r.Tick(w)

	draws := b.DrawsFor(pipelines.ModelPipelineKey)
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(1), draws[0].InstanceCount)
}

func TestModelWithoutMeshIsIgnored(t *testing.T) {
	b := rendertest.NewBackend()
	r := newModelRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	e := w.Create()
	ecs.Set(w, e, pipelines.Model{Color: [4]float32{1, 1, 1, 1}})
	ecs.Set(w, e, spatial.GlobalTransform{Transform: spatial.At(0, 0, 0)})

	r.Tick(w)

	assert.Empty(t, b.DrawsFor(pipelines.ModelPipelineKey))
}
