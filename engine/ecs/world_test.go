package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float32
}

type velocity struct {
	DX, DY float32
}

type tag struct{}

func TestCreateDestroyAlive(t *testing.T) {
	w := NewWorld()

	a := w.Create()
	b := w.Create()
	assert.True(t, w.Alive(a))
	assert.True(t, w.Alive(b))
	assert.NotEqual(t, a, b)
	assert.False(t, w.Alive(NilEntity))

	w.Destroy(a)
	assert.False(t, w.Alive(a))
	assert.True(t, w.Alive(b))

	// slot reuse must not resurrect the old id
	c := w.Create()
	assert.True(t, w.Alive(c))
	assert.False(t, w.Alive(a))
	assert.NotEqual(t, a, c)
}

func TestSetGetRemove(t *testing.T) {
	w := NewWorld()
	e := w.Create()

	_, ok := Get[position](w, e)
	assert.False(t, ok)

	Set(w, e, position{X: 1, Y: 2})
	p, ok := Get[position](w, e)
	require.True(t, ok)
	assert.Equal(t, position{X: 1, Y: 2}, p)

	Set(w, e, position{X: 3, Y: 4})
	p, _ = Get[position](w, e)
	assert.Equal(t, position{X: 3, Y: 4}, p)
	assert.Equal(t, 1, Count[position](w))

	Remove[position](w, e)
	assert.False(t, Has[position](w, e))
	assert.Equal(t, 0, Count[position](w))
}

func TestGetPtrMutatesInPlace(t *testing.T) {
	w := NewWorld()
	e := w.Create()
	Set(w, e, position{X: 1})

	p, ok := GetPtr[position](w, e)
	require.True(t, ok)
	p.X = 9

	got, _ := Get[position](w, e)
	assert.Equal(t, float32(9), got.X)
}

func TestDestroyStripsComponents(t *testing.T) {
	w := NewWorld()
	e := w.Create()
	Set(w, e, position{X: 1})
	Set(w, e, velocity{DX: 2})

	w.Destroy(e)
	assert.False(t, Has[position](w, e))
	assert.False(t, Has[velocity](w, e))

	// stale-id writes must not attach to the recycled slot
	e2 := w.Create()
	Set(w, e, position{X: 5})
	assert.False(t, Has[position](w, e2))
}

func TestEachInsertionOrder(t *testing.T) {
	w := NewWorld()
	var created []Entity
	for i := 0; i < 5; i++ {
		e := w.Create()
		Set(w, e, position{X: float32(i)})
		created = append(created, e)
	}

	var seen []Entity
	Each(w, func(e Entity, v *position) bool {
		seen = append(seen, e)
		return true
	})
	assert.Equal(t, created, seen)
}

func TestEach2Join(t *testing.T) {
	w := NewWorld()
	a := w.Create()
	b := w.Create()
	c := w.Create()
	Set(w, a, position{X: 1})
	Set(w, b, position{X: 2})
	Set(w, c, position{X: 3})
	Set(w, a, velocity{DX: 10})
	Set(w, c, velocity{DX: 30})

	got := map[Entity]float32{}
	Each2(w, func(e Entity, p *position, v *velocity) bool {
		got[e] = p.X + v.DX
		return true
	})
	assert.Equal(t, map[Entity]float32{a: 11, c: 33}, got)
}

func TestEach3Join(t *testing.T) {
	w := NewWorld()
	a := w.Create()
	b := w.Create()
	Set(w, a, position{})
	Set(w, a, velocity{})
	Set(w, a, tag{})
	Set(w, b, position{})
	Set(w, b, velocity{})

	count := 0
	Each3(w, func(e Entity, p *position, v *velocity, g *tag) bool {
		count++
		assert.Equal(t, a, e)
		return true
	})
	assert.Equal(t, 1, count)
}

func TestEachEarlyStop(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 4; i++ {
		Set(w, w.Create(), position{})
	}
	count := 0
	Each(w, func(e Entity, v *position) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}
