// package camera defines the camera components entities carry and the math
// that turns a camera's world pose into the uniform record pipelines bind.
// Perspective and orthographic cameras are independent component types; the
// renderer uploads a uniform for every camera each frame and treats the first
// active one as the camera pipelines draw with.
package camera

import (
	"cogentcore.org/core/math32"

	"github.com/kestrel3d/kestrel/engine/spatial"
)

// Perspective is a perspective-projection camera component.
type Perspective struct {
	// Fov is the vertical field of view in degrees.
	Fov float32
	// Aspect is the viewport aspect ratio (width / height).
	Aspect float32
	// Near and Far are the clipping plane distances.
	Near float32
	Far  float32
	// Active marks this camera as a candidate for the frame's draw camera.
	Active bool
}

// NewPerspective returns a perspective camera with the engine defaults
// (45 degree fov, 16:9 aspect, near 0.1, far 100, active), adjusted by the
// provided options.
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - Perspective: the configured camera component
func NewPerspective(options ...PerspectiveOption) Perspective {
	c := Perspective{
		Fov:    45,
		Aspect: 16.0 / 9.0,
		Near:   0.1,
		Far:    100,
		Active: true,
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// Projection returns the camera's projection matrix.
//
// Returns:
//   - math32.Matrix4: perspective projection matrix
func (c Perspective) Projection() math32.Matrix4 {
	var m math32.Matrix4
	m.SetPerspective(c.Fov, c.Aspect, c.Near, c.Far)
	return m
}

// Orthographic is an orthographic-projection camera component.
type Orthographic struct {
	// Width and Height are the view volume extents in world units.
	Width  float32
	Height float32
	// Near and Far are the clipping plane distances.
	Near float32
	Far  float32
	// Active marks this camera as a candidate for the frame's draw camera.
	Active bool
}

// NewOrthographic returns an orthographic camera covering the given extents
// with near 0.1 and far 100, adjusted by the provided options.
//
// Parameters:
//   - width: view volume width in world units
//   - height: view volume height in world units
//   - options: builder options to apply
//
// Returns:
//   - Orthographic: the configured camera component
func NewOrthographic(width, height float32, options ...OrthographicOption) Orthographic {
	c := Orthographic{
		Width:  width,
		Height: height,
		Near:   0.1,
		Far:    100,
		Active: true,
	}
	for _, opt := range options {
		opt(&c)
	}
	return c
}

// Projection returns the camera's projection matrix.
//
// Returns:
//   - math32.Matrix4: orthographic projection matrix
func (c Orthographic) Projection() math32.Matrix4 {
	var m math32.Matrix4
	m.SetOrthographic(c.Width, c.Height, c.Near, c.Far)
	return m
}

// ViewMatrix derives the view matrix from a camera's resolved world pose.
// Scale is ignored: a camera's size never affects what it sees.
//
// Parameters:
//   - world: the camera entity's world-space pose
//
// Returns:
//   - *math32.Matrix4: world-to-camera transform
func ViewMatrix(world spatial.Transform) *math32.Matrix4 {
	var cview math32.Matrix4
	cview.SetTransform(world.Translation, world.Rotation, math32.Vec3(1, 1, 1))
	view, _ := cview.Inverse()
	return view
}

// Uniform composes projection and view into the fixed-layout uniform record
// pipelines upload verbatim to the device.
//
// Parameters:
//   - projection: the camera's projection matrix
//   - world: the camera entity's world-space pose
//
// Returns:
//   - GPUCameraUniform: the packed 80-byte uniform record
func Uniform(projection math32.Matrix4, world spatial.Transform) GPUCameraUniform {
	view := ViewMatrix(world)
	var viewProj math32.Matrix4
	viewProj.MulMatrices(&projection, view)

	var u GPUCameraUniform
	viewProj.ToArray(u.ViewProj[:], 0)
	u.CameraPosition = [3]float32{world.Translation.X, world.Translation.Y, world.Translation.Z}
	return u
}
