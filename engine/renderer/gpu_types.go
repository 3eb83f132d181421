package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// TextureRectVertex is the GPU-aligned vertex used by the shared textured
// quad geometry (sprites and UI panels). Size: 20 bytes.
type TextureRectVertex struct {
	Position [3]float32 // offset  0: vertex position in quad space (12 bytes)
	TexCoord [2]float32 // offset 12: UV texture coordinate (8 bytes)
}

// Size returns the size of the TextureRectVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *TextureRectVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the TextureRectVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer ready for GPU upload.
func (g *TextureRectVertex) Marshal() []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TexCoord[1]))
	return buf
}

// QuadVertices returns the four corners of the shared unit quad, centered on
// the origin in the XY plane with V pointing down in texture space.
//
// Returns:
//   - []TextureRectVertex: bottom-left, bottom-right, top-left, top-right
func QuadVertices() []TextureRectVertex {
	return []TextureRectVertex{
		{Position: [3]float32{-0.5, -0.5, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-0.5, 0.5, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{0.5, 0.5, 0}, TexCoord: [2]float32{1, 0}},
	}
}

// QuadIndices returns the two-triangle index list for QuadVertices.
//
// Returns:
//   - []uint32: six indices forming two CCW triangles
func QuadIndices() []uint32 {
	return []uint32{0, 1, 3, 0, 3, 2}
}

// MarshalVertices packs a TextureRectVertex slice into upload-ready bytes.
//
// Parameters:
//   - verts: the vertices to pack
//
// Returns:
//   - []byte: tightly packed vertex data
func MarshalVertices(verts []TextureRectVertex) []byte {
	buf := make([]byte, 0, len(verts)*20)
	for i := range verts {
		buf = append(buf, verts[i].Marshal()...)
	}
	return buf
}
