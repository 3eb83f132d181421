// package input holds the queryable input state the window layer feeds and
// the application reads. Transient state (just-pressed, just-released, scroll,
// motion deltas) lives for exactly one frame; the frame driver resets it after
// rendering.
package input

import (
	"time"

	"cogentcore.org/core/math32"
)

// Time tracks wall-clock frame timing.
type Time struct {
	last  time.Time
	delta float64
}

// NewTime creates a Time anchored at the current instant.
//
// Returns:
//   - *Time: timer with zero delta
func NewTime() *Time {
	return &Time{last: time.Now()}
}

// Tick advances the timer to now and records the elapsed delta.
func (t *Time) Tick() {
	now := time.Now()
	t.delta = now.Sub(t.last).Seconds()
	t.last = now
}

// Delta returns the seconds elapsed between the two most recent Ticks.
//
// Returns:
//   - float64: frame delta time in seconds
func (t *Time) Delta() float64 {
	return t.delta
}

// Buttons tracks pressed / just-pressed / just-released state for any button
// domain (key codes, mouse buttons).
type Buttons[T comparable] struct {
	pressed      map[T]bool
	justPressed  map[T]bool
	justReleased map[T]bool
}

// NewButtons creates an empty button state tracker.
//
// Returns:
//   - *Buttons[T]: tracker with no buttons down
func NewButtons[T comparable]() *Buttons[T] {
	return &Buttons[T]{
		pressed:      make(map[T]bool),
		justPressed:  make(map[T]bool),
		justReleased: make(map[T]bool),
	}
}

// Press records a press event. Repeat presses of an already-held button do
// not re-arm the just-pressed edge.
//
// Parameters:
//   - b: the button that went down
func (s *Buttons[T]) Press(b T) {
	if s.pressed[b] {
		return
	}
	s.pressed[b] = true
	s.justPressed[b] = true
}

// Release records a release event.
//
// Parameters:
//   - b: the button that went up
func (s *Buttons[T]) Release(b T) {
	if !s.pressed[b] {
		return
	}
	delete(s.pressed, b)
	s.justReleased[b] = true
}

// Pressed reports whether the button is currently held.
func (s *Buttons[T]) Pressed(b T) bool {
	return s.pressed[b]
}

// JustPressed reports whether the button went down this frame.
func (s *Buttons[T]) JustPressed(b T) bool {
	return s.justPressed[b]
}

// JustReleased reports whether the button went up this frame.
func (s *Buttons[T]) JustReleased(b T) bool {
	return s.justReleased[b]
}

// Reset clears the per-frame edges. Held state persists.
func (s *Buttons[T]) Reset() {
	clear(s.justPressed)
	clear(s.justReleased)
}

// Mouse tracks cursor position, per-frame motion and scroll deltas, and
// button state.
type Mouse struct {
	Buttons  *Buttons[int]
	Position math32.Vector2
	Motion   math32.Vector2
	Scroll   math32.Vector2
}

// NewMouse creates an empty mouse state tracker.
//
// Returns:
//   - *Mouse: tracker with no buttons down and zero deltas
func NewMouse() *Mouse {
	return &Mouse{Buttons: NewButtons[int]()}
}

// Move records a cursor position event, accumulating the motion delta since
// the last reset.
//
// Parameters:
//   - x, y: new cursor position in window coordinates
func (m *Mouse) Move(x, y float32) {
	m.Motion.X += x - m.Position.X
	m.Motion.Y += y - m.Position.Y
	m.Position = math32.Vec2(x, y)
}

// AddScroll accumulates a scroll-wheel event.
//
// Parameters:
//   - dx, dy: scroll offsets
func (m *Mouse) AddScroll(dx, dy float32) {
	m.Scroll.X += dx
	m.Scroll.Y += dy
}

// Reset clears motion and scroll deltas and the per-frame button edges.
// Position and held buttons persist.
func (m *Mouse) Reset() {
	m.Motion = math32.Vector2{}
	m.Scroll = math32.Vector2{}
	m.Buttons.Reset()
}

// State bundles all input devices for one window.
type State struct {
	Keyboard *Buttons[int]
	Mouse    *Mouse
}

// NewState creates an empty input state.
//
// Returns:
//   - *State: input state with no activity recorded
func NewState() *State {
	return &State{
		Keyboard: NewButtons[int](),
		Mouse:    NewMouse(),
	}
}

// Reset clears all per-frame transient state. Called by the frame driver at
// the end of every frame.
func (s *State) Reset() {
	s.Keyboard.Reset()
	s.Mouse.Reset()
}
