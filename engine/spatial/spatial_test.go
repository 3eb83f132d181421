package spatial

import (
	"testing"
	"time"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/engine/ecs"
)

const epsilon = 1e-5

func assertVec3Near(t *testing.T, want, got math32.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, epsilon)
	assert.InDelta(t, want.Y, got.Y, epsilon)
	assert.InDelta(t, want.Z, got.Z, epsilon)
}

func TestFlatPassCopiesLocalPose(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Create()

	local := NewTransform()
	local.Translation = math32.Vec3(1, 2, 3)
	local.Rotation.SetFromAxisAngle(math32.Vec3(0, 1, 0), math32.DegToRad(90))
	local.Scale = math32.Vec3(2, 2, 2)
	ecs.Set(w, e, local)
	ecs.Set(w, e, GlobalTransform{Transform: NewTransform()})

	ApplyTransforms(w)

	g, ok := ecs.Get[GlobalTransform](w, e)
	require.True(t, ok)
	assert.Equal(t, local, g.Transform)
}

func TestFlatPassIgnoresEntitiesWithoutGlobal(t *testing.T) {
	w := ecs.NewWorld()
	e := w.Create()
	ecs.Set(w, e, At(1, 0, 0))

	ApplyTransforms(w)

	assert.False(t, ecs.Has[GlobalTransform](w, e))
}

func TestChainComposition(t *testing.T) {
	w := ecs.NewWorld()
	root := w.Create()
	a := w.Create()
	b := w.Create()

	ecs.Set(w, root, NewTransform())
	ecs.Set(w, root, GlobalTransform{Transform: NewTransform()})
	ecs.Set(w, a, ParentLink{Parent: root, Offset: At(1, 0, 0)})
	ecs.Set(w, b, ParentLink{Parent: a, Offset: At(0, 1, 0)})

	ApplyTransforms(w)
	ResolveHierarchy(w)

	ga, ok := ecs.Get[GlobalTransform](w, a)
	require.True(t, ok)
	assertVec3Near(t, math32.Vec3(1, 0, 0), ga.Translation)

	gb, ok := ecs.Get[GlobalTransform](w, b)
	require.True(t, ok)
	assertVec3Near(t, math32.Vec3(1, 1, 0), gb.Translation)
}

func TestHierarchyAppliesRotationAndScale(t *testing.T) {
	w := ecs.NewWorld()
	root := w.Create()
	child := w.Create()

	// root rotated 90 degrees around Y with scale 2: child offset +X lands at -Z*2
	rt := NewTransform()
	rt.Rotation.SetFromAxisAngle(math32.Vec3(0, 1, 0), math32.DegToRad(90))
	rt.Scale = math32.Vec3(2, 2, 2)
	ecs.Set(w, root, rt)
	ecs.Set(w, root, GlobalTransform{Transform: NewTransform()})
	ecs.Set(w, child, ParentLink{Parent: root, Offset: At(1, 0, 0)})

	ApplyTransforms(w)
	ResolveHierarchy(w)

	g, ok := ecs.Get[GlobalTransform](w, child)
	require.True(t, ok)
	assertVec3Near(t, math32.Vec3(0, 0, -2), g.Translation)
	assertVec3Near(t, math32.Vec3(2, 2, 2), g.Scale)
}

func TestOrphanKeepsStalePose(t *testing.T) {
	w := ecs.NewWorld()
	parent := w.Create()
	child := w.Create()
	w.Destroy(parent)

	stale := GlobalTransform{Transform: At(5, 5, 5)}
	ecs.Set(w, child, ParentLink{Parent: parent, Offset: At(1, 0, 0)})
	ecs.Set(w, child, stale)

	assert.NotPanics(t, func() {
		ApplyTransforms(w)
		ResolveHierarchy(w)
	})

	g, ok := ecs.Get[GlobalTransform](w, child)
	require.True(t, ok)
	assert.Equal(t, stale, g)
}

func TestRootWithoutGlobalSkipsSubtree(t *testing.T) {
	w := ecs.NewWorld()
	root := w.Create() // alive but carries no GlobalTransform
	child := w.Create()

	ecs.Set(w, child, ParentLink{Parent: root, Offset: At(1, 0, 0)})
	ResolveHierarchy(w)

	assert.False(t, ecs.Has[GlobalTransform](w, child))
}

func TestParentLinkOverridesLocalTransform(t *testing.T) {
	w := ecs.NewWorld()
	root := w.Create()
	child := w.Create()

	ecs.Set(w, root, At(10, 0, 0))
	ecs.Set(w, root, GlobalTransform{Transform: NewTransform()})

	// child carries its own Transform, which must lose to the ParentLink offset
	ecs.Set(w, child, At(9, 9, 9))
	ecs.Set(w, child, GlobalTransform{Transform: NewTransform()})
	ecs.Set(w, child, ParentLink{Parent: root, Offset: At(0, 2, 0)})

	ApplyTransforms(w)
	ResolveHierarchy(w)

	g, ok := ecs.Get[GlobalTransform](w, child)
	require.True(t, ok)
	assertVec3Near(t, math32.Vec3(10, 2, 0), g.Translation)
}

func TestCycleResolvesWithoutHanging(t *testing.T) {
	w := ecs.NewWorld()
	a := w.Create()
	b := w.Create()

	// a and b parent each other: neither is a root, so neither is refreshed
	ecs.Set(w, a, ParentLink{Parent: b, Offset: At(1, 0, 0)})
	ecs.Set(w, b, ParentLink{Parent: a, Offset: At(0, 1, 0)})

	done := make(chan struct{})
	go func() {
		ResolveHierarchy(w)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hierarchy resolution did not terminate on cyclic input")
	}

	assert.False(t, ecs.Has[GlobalTransform](w, a))
	assert.False(t, ecs.Has[GlobalTransform](w, b))
}

func TestDeepChainCascades(t *testing.T) {
	w := ecs.NewWorld()
	root := w.Create()
	ecs.Set(w, root, NewTransform())
	ecs.Set(w, root, GlobalTransform{Transform: NewTransform()})

	parent := root
	tail := root
	const depth = 50
	for i := 0; i < depth; i++ {
		e := w.Create()
		ecs.Set(w, e, ParentLink{Parent: parent, Offset: At(1, 0, 0)})
		parent = e
		tail = e
	}

	ResolveHierarchy(w)

	g, ok := ecs.Get[GlobalTransform](w, tail)
	require.True(t, ok)
	assertVec3Near(t, math32.Vec3(depth, 0, 0), g.Translation)
}
