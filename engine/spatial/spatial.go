// package spatial defines the pose components attached to entities and the
// per-frame resolution passes that turn local poses and parent links into
// world-space transforms.
package spatial

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/kestrel3d/kestrel/engine/ecs"
)

// Transform is a local pose: translation, rotation and scale relative to
// whatever space the entity lives in (world space for roots, the parent's
// space for hierarchy members).
type Transform struct {
	Translation math32.Vector3
	Rotation    math32.Quat
	Scale       math32.Vector3
}

// NewTransform returns an identity transform (zero translation, identity
// rotation, unit scale).
//
// Returns:
//   - Transform: the identity pose
func NewTransform() Transform {
	return Transform{
		Rotation: math32.Quat{W: 1},
		Scale:    math32.Vec3(1, 1, 1),
	}
}

// At returns an identity transform translated to the given position.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - Transform: identity pose at (x, y, z)
func At(x, y, z float32) Transform {
	t := NewTransform()
	t.Translation = math32.Vec3(x, y, z)
	return t
}

// Matrix returns the 4x4 homogeneous matrix form of the transform.
//
// Returns:
//   - math32.Matrix4: the composed translation * rotation * scale matrix
func (t Transform) Matrix() math32.Matrix4 {
	var m math32.Matrix4
	m.SetTransform(t.Translation, t.Rotation, t.Scale)
	return m
}

// Mul composes this transform with a child pose expressed in this transform's
// space, returning the child's pose in this transform's parent space.
// Equivalent to multiplying the two affine matrices but keeps the
// translation/rotation/scale decomposition exact.
//
// Parameters:
//   - child: pose relative to t
//
// Returns:
//   - Transform: child re-expressed in t's enclosing space
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(child.Translation.Mul(t.Scale).MulQuat(t.Rotation)),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale:       t.Scale.Mul(child.Scale),
	}
}

// LookAt orients the transform so its forward axis points from its current
// translation toward target.
//
// Parameters:
//   - target: world-space point to face
//   - up: world-space up vector (typically math32.Vec3(0, 1, 0))
func (t *Transform) LookAt(target, up math32.Vector3) {
	t.Rotation.SetFromRotationMatrix(math32.NewLookAt(t.Translation, target, up))
}

// GlobalTransform is the resolved world-space pose of an entity. It is written
// exclusively by the resolution passes below (and by the UI pipeline's
// billboard override) and read by every rendering pipeline.
type GlobalTransform struct {
	Transform
}

// ParentLink expresses "my pose is relative to entity Parent". Entities
// carrying a ParentLink get their GlobalTransform from the hierarchy pass;
// any co-located Transform component is ignored in favor of Offset.
type ParentLink struct {
	Parent ecs.Entity
	Offset Transform
}

// ApplyTransforms is the flat resolution pass: every entity holding both a
// Transform and a GlobalTransform gets its world pose set directly from its
// local pose. This seeds hierarchy roots and covers all unparented entities.
//
// Parameters:
//   - w: the entity registry to resolve
func ApplyTransforms(w *ecs.World) {
	ecs.Each2(w, func(e ecs.Entity, t *Transform, g *GlobalTransform) bool {
		g.Transform = *t
		return true
	})
}

// ResolveHierarchy is the hierarchy resolution pass. It rebuilds the
// parent->children adjacency from all ParentLink components, finds the roots
// (parents that are not themselves children), and cascades world poses down
// each subtree as parentWorld * link.Offset.
//
// Roots without a readable GlobalTransform have their subtree skipped for the
// frame; the children keep whatever world pose they last had. A repeated
// visit of the same entity means the links form a cycle, which is a contract
// violation and panics.
//
// Parameters:
//   - w: the entity registry to resolve
func ResolveHierarchy(w *ecs.World) {
	children := make(map[ecs.Entity][]ecs.Entity)
	links := make(map[ecs.Entity]*ParentLink)
	ecs.Each(w, func(e ecs.Entity, link *ParentLink) bool {
		children[link.Parent] = append(children[link.Parent], e)
		links[e] = link
		return true
	})
	if len(children) == 0 {
		return
	}

	visited := make(map[ecs.Entity]bool)
	for parent := range children {
		if _, isChild := links[parent]; isChild {
			continue
		}
		g, ok := ecs.Get[GlobalTransform](w, parent)
		if !ok {
			continue
		}
		visited[parent] = true
		cascade(w, children, links, visited, parent, g.Transform)
	}
}

func cascade(w *ecs.World, children map[ecs.Entity][]ecs.Entity, links map[ecs.Entity]*ParentLink, visited map[ecs.Entity]bool, parent ecs.Entity, parentWorld Transform) {
	for _, child := range children[parent] {
		if visited[child] {
			panic(fmt.Sprintf("spatial: ParentLink cycle detected at entity %d", child))
		}
		visited[child] = true
		world := parentWorld.Mul(links[child].Offset)
		ecs.Set(w, child, GlobalTransform{Transform: world})
		cascade(w, children, links, visited, child, world)
	}
}
