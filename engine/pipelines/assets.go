package pipelines

import (
	"math"
	"sync/atomic"

	"github.com/kestrel3d/kestrel/common"
)

// MeshID uniquely identifies a mesh's geometry for batching. IDs are handed
// out by a process-wide monotonic counter at mesh creation.
type MeshID uint32

// ImageID uniquely identifies a texture image for batching.
type ImageID uint32

var currentMeshID atomic.Uint32
var currentImageID atomic.Uint32

// Mesh is immutable CPU-side geometry shared by any number of model entities.
// The model pipeline uploads it once and retains the GPU copy only while at
// least one current-frame instance references it.
type Mesh struct {
	id       MeshID
	vertices []ModelVertex
	indices  []uint32
	radius   float32
}

// NewMesh wraps vertex and index data as a shareable mesh asset, computing
// the bounding sphere radius used for culling.
//
// Parameters:
//   - vertices: the mesh vertices in model space
//   - indices: triangle list indices into vertices
//
// Returns:
//   - *Mesh: the mesh asset with a freshly allocated id
func NewMesh(vertices []ModelVertex, indices []uint32) *Mesh {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}

	return &Mesh{
		id:       MeshID(currentMeshID.Add(1)),
		vertices: vertices,
		indices:  indices,
		radius:   float32(math.Sqrt(float64(maxDistSq))),
	}
}

// ID returns the mesh's batching identity.
func (m *Mesh) ID() MeshID {
	return m.id
}

// IndexCount returns the number of indices drawn per instance.
func (m *Mesh) IndexCount() uint32 {
	return uint32(len(m.indices))
}

// BoundsRadius returns the model-space bounding sphere radius.
func (m *Mesh) BoundsRadius() float32 {
	return m.radius
}

// Image is immutable CPU-side RGBA pixel data shared by any number of
// renderable entities. Pipelines upload it lazily and retain the GPU texture
// only while referenced.
type Image struct {
	id   ImageID
	data common.TextureData
}

// NewImage wraps decoded pixel data as a shareable image asset.
//
// Parameters:
//   - data: RGBA pixels with dimensions
//
// Returns:
//   - *Image: the image asset with a freshly allocated id
func NewImage(data common.TextureData) *Image {
	return &Image{
		id:   ImageID(currentImageID.Add(1)),
		data: data,
	}
}

// LoadImage decodes an image file into an Image asset.
//
// Parameters:
//   - path: path to a PNG or JPEG file
//
// Returns:
//   - *Image: the decoded image asset
//   - error: an error if the file cannot be read or decoded
func LoadImage(path string) (*Image, error) {
	data, err := common.DecodeImageFile(path)
	if err != nil {
		return nil, err
	}
	return NewImage(data), nil
}

// ID returns the image's batching identity.
func (i *Image) ID() ImageID {
	return i.id
}

// CubeMesh builds a unit cube centered on the origin with per-face normals
// and UVs.
//
// Returns:
//   - *Mesh: a 24-vertex, 36-index cube
func CubeMesh() *Mesh {
	faces := [6]struct {
		normal [3]float32
		// corner positions in CCW order viewed from outside
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]ModelVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for fi, f := range faces {
		base := uint32(fi * 4)
		for ci, corner := range f.corners {
			vertices = append(vertices, ModelVertex{
				Position: corner,
				Normal:   f.normal,
				TexCoord: uvs[ci],
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(vertices, indices)
}

// PlaneMesh builds a flat quad in the XZ plane with an upward normal.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//
// Returns:
//   - *Mesh: a 4-vertex, 6-index plane
func PlaneMesh(width, depth float32) *Mesh {
	hw, hd := width/2, depth/2
	vertices := []ModelVertex{
		{Position: [3]float32{-hw, 0, hd}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{hw, 0, hd}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{hw, 0, -hd}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-hw, 0, -hd}, Normal: [3]float32{0, 1, 0}, TexCoord: [2]float32{0, 0}},
	}
	return NewMesh(vertices, []uint32{0, 1, 2, 0, 2, 3})
}
