package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/renderer/rendertest"
)

func TestInstanceBufferCreatesOnFirstUpdate(t *testing.T) {
	b := rendertest.NewBackend()
	ib := renderer.NewInstanceBuffer("test")

	assert.Nil(t, ib.Buffer())
	assert.Equal(t, uint32(0), ib.Count())

	ib.Update(b, make([]byte, 32), 16)

	require.NotNil(t, ib.Buffer())
	assert.Equal(t, uint32(2), ib.Count())
	assert.Equal(t, 1, len(b.Buffers))
	assert.Equal(t, 1, b.LiveBuffers())
}

func TestInstanceBufferRewritesInPlaceWhenDataFits(t *testing.T) {
	b := rendertest.NewBackend()
	ib := renderer.NewInstanceBuffer("test")

	ib.Update(b, make([]byte, 48), 16)
	ib.Update(b, make([]byte, 48), 16)
	ib.Update(b, make([]byte, 16), 16)

	assert.Equal(t, 1, len(b.Buffers), "stable or shrinking data must not reallocate")
	assert.Equal(t, 2, b.Writes)
	assert.Equal(t, uint32(1), ib.Count())
}

func TestInstanceBufferGrowsAndReleasesOldBuffer(t *testing.T) {
	b := rendertest.NewBackend()
	ib := renderer.NewInstanceBuffer("test")

	ib.Update(b, make([]byte, 16), 16)
	ib.Update(b, make([]byte, 64), 16)

	assert.Equal(t, 2, len(b.Buffers))
	assert.Equal(t, 1, b.LiveBuffers())
	assert.True(t, b.Buffers[0].Released)
	assert.Equal(t, uint32(4), ib.Count())

	// Capacity never shrinks: fitting data keeps the grown buffer.
	ib.Update(b, make([]byte, 32), 16)
	assert.Equal(t, 2, len(b.Buffers))
	assert.Equal(t, uint32(2), ib.Count())
}

func TestInstanceBufferPanicsOnMisalignedData(t *testing.T) {
	b := rendertest.NewBackend()
	ib := renderer.NewInstanceBuffer("test")

	assert.Panics(t, func() {
		ib.Update(b, make([]byte, 20), 16)
	})
}

func TestBatchMapReconcileCreatesUpdatesAndDestroys(t *testing.T) {
	b := rendertest.NewBackend()
	m := renderer.NewBatchMap[string]("test", 16)

	m.Reconcile(b, map[string][]byte{
		"a": make([]byte, 32),
		"b": make([]byte, 16),
	})
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, b.LiveBuffers())

	// "a" survives with a new count, "b" vanishes, "c" appears.
	m.Reconcile(b, map[string][]byte{
		"a": make([]byte, 16),
		"c": make([]byte, 48),
	})
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, b.LiveBuffers())

	ib, ok := m.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, uint32(1), ib.Count())

	_, ok = m.Lookup("b")
	assert.False(t, ok, "absent keys must be dropped")

	ib, ok = m.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, uint32(3), ib.Count())
}

func TestBatchMapReconcileEmptyDestroysEverything(t *testing.T) {
	b := rendertest.NewBackend()
	m := renderer.NewBatchMap[int]("test", 16)

	m.Reconcile(b, map[int][]byte{1: make([]byte, 16), 2: make([]byte, 16)})
	m.Reconcile(b, nil)

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, b.LiveBuffers())
}

func TestBatchMapReconcileIsIdempotent(t *testing.T) {
	b := rendertest.NewBackend()
	m := renderer.NewBatchMap[string]("test", 16)
	live := map[string][]byte{"a": make([]byte, 32)}

	m.Reconcile(b, live)
	buffersAfterFirst := len(b.Buffers)
	m.Reconcile(b, live)
	m.Reconcile(b, live)

	assert.Equal(t, buffersAfterFirst, len(b.Buffers), "an unchanged accumulation must not reallocate")
	assert.Equal(t, 1, m.Len())
}

func TestPruneCacheReleasesUnusedEntries(t *testing.T) {
	b := rendertest.NewBackend()
	cache := map[string]renderer.Buffer{
		"keep": b.CreateBuffer("keep", 16, renderer.BufferUsageVertex),
		"drop": b.CreateBuffer("drop", 16, renderer.BufferUsageVertex),
	}

	renderer.PruneCache(cache, map[string]bool{"keep": true}, func(buf renderer.Buffer) {
		buf.Release()
	})

	assert.Len(t, cache, 1)
	assert.Contains(t, cache, "keep")
	assert.Equal(t, 1, b.LiveBuffers())
}
