// package pipelines provides the built-in rendering pipelines (lit models, 2D
// sprites, billboarded 3D UI panels with text) along with the renderable
// components and shared asset types they consume. Each pipeline follows the
// same per-frame contract: prep reconciles the current entity set into GPU
// instance batches, render issues one draw per live batch.
package pipelines

import "cogentcore.org/core/math32"

// Model marks an entity as a lit, textured mesh instance. Entities also need
// a resolved GlobalTransform to be drawn. A nil Texture falls back to the
// renderer's default white texture.
type Model struct {
	Mesh    *Mesh
	Texture *Image
	Color   [4]float32
	Scale   math32.Vector3
}

// NewModel returns a Model with white color and unit scale.
//
// Parameters:
//   - mesh: the mesh asset to draw (must not be nil)
//   - texture: the texture asset, or nil for the default texture
//
// Returns:
//   - Model: the renderable component
func NewModel(mesh *Mesh, texture *Image) Model {
	return Model{
		Mesh:    mesh,
		Texture: texture,
		Color:   [4]float32{1, 1, 1, 1},
		Scale:   math32.Vec3(1, 1, 1),
	}
}

// Sprite marks an entity as a textured 2D quad instance placed in world space.
type Sprite struct {
	Texture *Image
	Size    math32.Vector2
	Color   [4]float32
}

// NewSprite returns a white Sprite of the given size.
//
// Parameters:
//   - texture: the texture asset to draw (must not be nil)
//   - width: sprite width in world units
//   - height: sprite height in world units
//
// Returns:
//   - Sprite: the renderable component
func NewSprite(texture *Image, width, height float32) Sprite {
	return Sprite{
		Texture: texture,
		Size:    math32.Vec2(width, height),
		Color:   [4]float32{1, 1, 1, 1},
	}
}

// UI3D marks an entity as a billboarded option menu: a translucent panel with
// one text line per option and a highlight band behind the selected one. The
// UI pipeline forces the entity's GlobalTransform to face the active camera
// every frame.
type UI3D struct {
	Options  []string
	Selected uint8

	MenuColor      [4]float32
	SelectionColor [4]float32
	FontSize       float32
}

// NewUI3D returns a UI3D menu with the default grey palette and 30-unit font.
//
// Parameters:
//   - options: the menu lines, drawn top to bottom
//
// Returns:
//   - UI3D: the renderable component
func NewUI3D(options ...string) UI3D {
	return UI3D{
		Options:        options,
		MenuColor:      [4]float32{0.5, 0.5, 0.5, 0.7},
		SelectionColor: [4]float32{0.7, 0.7, 0.7, 0.8},
		FontSize:       30,
	}
}
