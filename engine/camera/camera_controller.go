package camera

import (
	"math"

	"cogentcore.org/core/math32"

	"github.com/kestrel3d/kestrel/engine/spatial"
)

// Controller provides third-person orbit controls around a target point using
// spherical coordinates (radius, azimuth, elevation). It owns no entity state;
// call Apply to write the resulting pose into a camera entity's Transform.
type Controller struct {
	target    math32.Vector3
	radius    float32
	minRadius float32
	maxRadius float32
	azimuth   float32 // radians around the Y axis
	elevation float32 // radians above the horizon, clamped

	orbitSpeed float32 // radians per orbit step
	zoomSpeed  float32 // world units per zoom step
}

// maxElevation keeps the camera off the poles where look-at up degenerates.
const maxElevation = 1.55

// ControllerOption is a functional option for configuring a Controller.
type ControllerOption func(*Controller)

// WithTarget sets the orbit pivot point.
//
// Parameters:
//   - x, y, z: world-space pivot coordinates
//
// Returns:
//   - ControllerOption: option function to apply
func WithTarget(x, y, z float32) ControllerOption {
	return func(c *Controller) {
		c.target = math32.Vec3(x, y, z)
	}
}

// WithRadius sets the initial orbit radius and its clamp bounds.
//
// Parameters:
//   - radius: initial distance from target
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - ControllerOption: option function to apply
func WithRadius(radius, minRadius, maxRadius float32) ControllerOption {
	return func(c *Controller) {
		c.radius = radius
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithSpeeds sets the per-step orbit and zoom increments.
//
// Parameters:
//   - orbitSpeed: radians per orbit step
//   - zoomSpeed: world units per zoom step
//
// Returns:
//   - ControllerOption: option function to apply
func WithSpeeds(orbitSpeed, zoomSpeed float32) ControllerOption {
	return func(c *Controller) {
		c.orbitSpeed = orbitSpeed
		c.zoomSpeed = zoomSpeed
	}
}

// NewController creates an orbit controller with sane defaults (radius 10
// clamped to [1, 100], orbit step 0.03 rad, zoom step 0.5 units).
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - *Controller: the configured controller
func NewController(options ...ControllerOption) *Controller {
	c := &Controller{
		radius:     10,
		minRadius:  1,
		maxRadius:  100,
		elevation:  0.4,
		orbitSpeed: 0.03,
		zoomSpeed:  0.5,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// OrbitLeft rotates the camera left around the target by one orbit step.
func (c *Controller) OrbitLeft() {
	c.azimuth -= c.orbitSpeed
}

// OrbitRight rotates the camera right around the target by one orbit step.
func (c *Controller) OrbitRight() {
	c.azimuth += c.orbitSpeed
}

// OrbitUp tilts the camera upward by one orbit step, clamped near the pole.
func (c *Controller) OrbitUp() {
	c.elevation = math32.Min(c.elevation+c.orbitSpeed, maxElevation)
}

// OrbitDown tilts the camera downward by one orbit step, clamped near the pole.
func (c *Controller) OrbitDown() {
	c.elevation = math32.Max(c.elevation-c.orbitSpeed, -maxElevation)
}

// Zoom adjusts the orbit radius. Positive delta zooms in.
//
// Parameters:
//   - delta: zoom amount scaled by the zoom speed
func (c *Controller) Zoom(delta float32) {
	c.radius = math32.Clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
}

// SetTarget moves the orbit pivot point.
//
// Parameters:
//   - x, y, z: world-space pivot coordinates
func (c *Controller) SetTarget(x, y, z float32) {
	c.target = math32.Vec3(x, y, z)
}

// Position returns the camera's world-space position derived from the current
// spherical coordinates.
//
// Returns:
//   - math32.Vector3: the orbit position
func (c *Controller) Position() math32.Vector3 {
	cosEl := float32(math.Cos(float64(c.elevation)))
	return math32.Vec3(
		c.target.X+c.radius*cosEl*float32(math.Sin(float64(c.azimuth))),
		c.target.Y+c.radius*float32(math.Sin(float64(c.elevation))),
		c.target.Z+c.radius*cosEl*float32(math.Cos(float64(c.azimuth))),
	)
}

// Apply writes the orbit pose into a camera entity's local transform: position
// from the spherical coordinates, rotation looking at the target.
//
// Parameters:
//   - t: the camera entity's Transform to update
func (c *Controller) Apply(t *spatial.Transform) {
	t.Translation = c.Position()
	t.LookAt(c.target, math32.Vec3(0, 1, 0))
}
