package pipelines_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/common"
	"github.com/kestrel3d/kestrel/engine/camera"
	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/pipelines"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/renderer/rendertest"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

func testImage(t *testing.T) *pipelines.Image {
	t.Helper()
	return pipelines.NewImage(common.TextureData{
		Pixels: []byte{255, 0, 0, 255},
		Width:  1,
		Height: 1,
	})
}

// addCamera creates an active perspective camera so pipelines have a draw
// camera during Tick.
func addCamera(w *ecs.World) ecs.Entity {
	cam := w.Create()
	ecs.Set(w, cam, camera.NewPerspective())
	ecs.Set(w, cam, spatial.GlobalTransform{Transform: spatial.At(0, 0, 10)})
	return cam
}

func addSprite(w *ecs.World, texture *pipelines.Image, x float32) ecs.Entity {
	e := w.Create()
	ecs.Set(w, e, pipelines.NewSprite(texture, 1, 1))
	ecs.Set(w, e, spatial.GlobalTransform{Transform: spatial.At(x, 0, 0)})
	return e
}

func newSpriteRenderer(t *testing.T, b *rendertest.Backend) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(b,
		renderer.WithPipeline(0, pipelines.NewSpritePipeline()),
	)
	require.NoError(t, err)
	return r
}

func TestSpriteBatchesByTexture(t *testing.T) {
	b := rendertest.NewBackend()
	r := newSpriteRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	t1 := testImage(t)
	t2 := testImage(t)
	addSprite(w, t1, 0)
	addSprite(w, t1, 1)
	addSprite(w, t2, 2)

	r.Tick(w)

	draws := b.DrawsFor(pipelines.SpritePipelineKey)
	require.Len(t, draws, 2)

	counts := []uint32{draws[0].InstanceCount, draws[1].InstanceCount}
	assert.ElementsMatch(t, []uint32{2, 1}, counts)
	for _, d := range draws {
		assert.True(t, d.Indexed)
		assert.Equal(t, uint32(6), d.IndexCount)
	}
}

func TestSpriteRemovalEvictsBatchAndTexture(t *testing.T) {
	b := rendertest.NewBackend()
	r := newSpriteRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	t1 := testImage(t)
	t2 := testImage(t)
	addSprite(w, t1, 0)
	addSprite(w, t1, 1)
	lone := addSprite(w, t2, 2)

	r.Tick(w)
	liveTextures := b.LiveTextures()

	w.Destroy(lone)
	b.Reset()
	r.Tick(w)

	draws := b.DrawsFor(pipelines.SpritePipelineKey)
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(2), draws[0].InstanceCount)

	// The orphaned texture and its instance buffer are gone.
	assert.Equal(t, liveTextures-1, b.LiveTextures())
}

func TestSpritePrepIsIdempotent(t *testing.T) {
	b := rendertest.NewBackend()
	r := newSpriteRenderer(t, b)

	w := ecs.NewWorld()
	addCamera(w)
	t1 := testImage(t)
	addSprite(w, t1, 0)
	addSprite(w, t1, 1)

	r.Tick(w)
	buffersAfterFirst := len(b.Buffers)
	texturesAfterFirst := len(b.Textures)

	r.Tick(w)
	r.Tick(w)

	assert.Equal(t, buffersAfterFirst, len(b.Buffers), "an unchanged entity set must not allocate")
	assert.Equal(t, texturesAfterFirst, len(b.Textures))
}

func TestSpriteSkipsDrawWithoutCamera(t *testing.T) {
	b := rendertest.NewBackend()
	r := newSpriteRenderer(t, b)

	w := ecs.NewWorld()
	addSprite(w, testImage(t), 0)

	r.Tick(w)

	assert.Empty(t, b.DrawsFor(pipelines.SpritePipelineKey))
	// The frame itself still runs; only this pipeline's draws are suppressed.
	assert.Equal(t, 1, b.Presents)
}
