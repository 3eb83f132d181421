package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel3d/kestrel/common"
)

func TestButtonEdges(t *testing.T) {
	b := NewButtons[int]()

	b.Press(common.KeyW)
	assert.True(t, b.Pressed(common.KeyW))
	assert.True(t, b.JustPressed(common.KeyW))
	assert.False(t, b.JustReleased(common.KeyW))

	// key-repeat press while held must not re-arm the edge
	b.Reset()
	b.Press(common.KeyW)
	assert.True(t, b.Pressed(common.KeyW))
	assert.False(t, b.JustPressed(common.KeyW))

	b.Release(common.KeyW)
	assert.False(t, b.Pressed(common.KeyW))
	assert.True(t, b.JustReleased(common.KeyW))
}

func TestReleaseWithoutPressIsNoop(t *testing.T) {
	b := NewButtons[int]()
	b.Release(common.KeySpace)
	assert.False(t, b.JustReleased(common.KeySpace))
}

func TestResetKeepsHeldState(t *testing.T) {
	s := NewState()
	s.Keyboard.Press(common.KeyA)
	s.Mouse.Buttons.Press(common.MouseButtonLeft)
	s.Mouse.Move(100, 50)
	s.Mouse.AddScroll(0, 1)

	s.Reset()

	assert.True(t, s.Keyboard.Pressed(common.KeyA))
	assert.False(t, s.Keyboard.JustPressed(common.KeyA))
	assert.True(t, s.Mouse.Buttons.Pressed(common.MouseButtonLeft))
	assert.Equal(t, float32(100), s.Mouse.Position.X)
	assert.Equal(t, float32(50), s.Mouse.Position.Y)
	assert.Zero(t, s.Mouse.Motion.X)
	assert.Zero(t, s.Mouse.Motion.Y)
	assert.Zero(t, s.Mouse.Scroll.Y)
}

func TestMouseMotionAccumulates(t *testing.T) {
	m := NewMouse()
	m.Move(10, 10)
	m.Move(15, 8)

	assert.Equal(t, float32(15), m.Position.X)
	assert.Equal(t, float32(8), m.Position.Y)
	assert.Equal(t, float32(15), m.Motion.X)
	assert.Equal(t, float32(8), m.Motion.Y)

	m.Reset()
	m.Move(20, 8)
	assert.Equal(t, float32(5), m.Motion.X)
	assert.Zero(t, m.Motion.Y)
}

func TestTimeDelta(t *testing.T) {
	tm := NewTime()
	assert.Zero(t, tm.Delta())
	tm.Tick()
	assert.GreaterOrEqual(t, tm.Delta(), 0.0)
}
