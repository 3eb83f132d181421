package camera

// PerspectiveOption is a functional option for configuring a Perspective camera.
type PerspectiveOption func(*Perspective)

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - PerspectiveOption: option function to apply
func WithFov(fov float32) PerspectiveOption {
	return func(c *Perspective) {
		c.Fov = fov
	}
}

// WithAspect sets the viewport aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - PerspectiveOption: option function to apply
func WithAspect(aspect float32) PerspectiveOption {
	return func(c *Perspective) {
		c.Aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - PerspectiveOption: option function to apply
func WithClipPlanes(near, far float32) PerspectiveOption {
	return func(c *Perspective) {
		c.Near = near
		c.Far = far
	}
}

// WithActive marks or unmarks the camera as a draw-camera candidate.
//
// Parameters:
//   - active: true if the camera should be considered for drawing
//
// Returns:
//   - PerspectiveOption: option function to apply
func WithActive(active bool) PerspectiveOption {
	return func(c *Perspective) {
		c.Active = active
	}
}

// OrthographicOption is a functional option for configuring an Orthographic camera.
type OrthographicOption func(*Orthographic)

// WithOrthoClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance (must be > near)
//
// Returns:
//   - OrthographicOption: option function to apply
func WithOrthoClipPlanes(near, far float32) OrthographicOption {
	return func(c *Orthographic) {
		c.Near = near
		c.Far = far
	}
}

// WithOrthoActive marks or unmarks the camera as a draw-camera candidate.
//
// Parameters:
//   - active: true if the camera should be considered for drawing
//
// Returns:
//   - OrthographicOption: option function to apply
func WithOrthoActive(active bool) OrthographicOption {
	return func(c *Orthographic) {
		c.Active = active
	}
}
