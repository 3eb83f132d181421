package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel3d/kestrel/engine"
	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/renderer/rendertest"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

type testApp struct {
	initErr error
	inits   int
	updates int
	onInit  func(w *ecs.World) error
	onStep  func(state *engine.State)
}

func (a *testApp) Init(w *ecs.World) error {
	a.inits++
	if a.initErr != nil {
		return a.initErr
	}
	if a.onInit != nil {
		return a.onInit(w)
	}
	return nil
}

func (a *testApp) Update(state *engine.State) {
	a.updates++
	if a.onStep != nil {
		a.onStep(state)
	}
}

func (a *testApp) Resize(width, height uint32) {}

func TestStartRunsInitOnce(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewBackend()))
	app := &testApp{}

	require.NoError(t, e.Start(app))
	assert.Equal(t, 1, app.inits)
	assert.Equal(t, 0, app.updates)
}

func TestStartWrapsInitError(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewBackend()))
	boom := errors.New("no assets")
	app := &testApp{initErr: boom}

	err := e.Start(app)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestStepPresentsOneFrame(t *testing.T) {
	b := rendertest.NewBackend()
	e := engine.NewEngine(engine.WithBackend(b))
	app := &testApp{}
	require.NoError(t, e.Start(app))

	e.Step()
	e.Step()

	assert.Equal(t, 2, app.updates)
	assert.Equal(t, 2, b.Presents)
}

func TestStepResolvesSpatialAfterUpdate(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewBackend()))

	var parent, child ecs.Entity
	app := &testApp{
		onInit: func(w *ecs.World) error {
			parent = w.Create()
			ecs.Set(w, parent, spatial.At(1, 0, 0))
			ecs.Set(w, parent, spatial.GlobalTransform{})
			child = w.Create()
			ecs.Set(w, child, spatial.ParentLink{Parent: parent, Offset: spatial.At(0, 2, 0)})
			ecs.Set(w, child, spatial.GlobalTransform{})
			return nil
		},
		onStep: func(state *engine.State) {
			// Move the parent during the frame; the hierarchy must pick the
			// new pose up before rendering.
			t, _ := ecs.Get[spatial.Transform](state.World, parent)
			t.Translation.X = 5
			ecs.Set(state.World, parent, t)
		},
	}
	require.NoError(t, e.Start(app))

	e.Step()

	g, ok := ecs.Get[spatial.GlobalTransform](e.World(), child)
	require.True(t, ok)
	assert.Equal(t, float32(5), g.Translation.X)
	assert.Equal(t, float32(2), g.Translation.Y)
}

func TestStepClearsTransientInput(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewBackend()))

	var sawEdge bool
	app := &testApp{
		onStep: func(state *engine.State) {
			sawEdge = state.Input.Keyboard.JustPressed(32)
		},
	}
	require.NoError(t, e.Start(app))

	e.Input().Keyboard.Press(32)
	e.Step()

	assert.True(t, sawEdge, "edge must be visible during the frame it occurred")
	assert.False(t, e.Input().Keyboard.JustPressed(32), "edge must not survive the frame")
	assert.True(t, e.Input().Keyboard.Pressed(32), "held state must survive the frame")
}

func TestStateDeltaIsNonNegative(t *testing.T) {
	e := engine.NewEngine(engine.WithBackend(rendertest.NewBackend()))

	var delta float32 = -1
	app := &testApp{
		onStep: func(state *engine.State) {
			delta = state.Delta
		},
	}
	require.NoError(t, e.Start(app))

	e.Step()

	assert.GreaterOrEqual(t, delta, float32(0))
}
