package pipelines

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// ModelVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout in model.wgsl.
// Size: 32 bytes (std430 aligned, no padding required).
type ModelVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the ModelVertex struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *ModelVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the ModelVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *ModelVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	return buf
}

// MarshalModelVertices packs a ModelVertex slice into upload-ready bytes.
//
// Parameters:
//   - verts: the vertices to pack
//
// Returns:
//   - []byte: tightly packed vertex data
func MarshalModelVertices(verts []ModelVertex) []byte {
	buf := make([]byte, 0, len(verts)*32)
	for i := range verts {
		buf = append(buf, verts[i].Marshal()...)
	}
	return buf
}

// MarshalIndices packs a uint32 index slice into upload-ready bytes.
//
// Parameters:
//   - indices: the indices to pack
//
// Returns:
//   - []byte: tightly packed index data
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// GPUModelInstance is one packed per-instance record in a model batch's
// instance buffer. The normal matrix is the 3x3 rotation-only matrix so
// non-uniform scale never distorts lighting normals.
// Matches the WGSL InstanceInput struct layout in model.wgsl.
// Size: 128 bytes.
type GPUModelInstance struct {
	Transform [16]float32 // offset   0: world transform matrix (mat4x4<f32>)
	Color     [4]float32  // offset  64: instance tint color (vec4<f32>)
	Normal    [9]float32  // offset  80: rotation-only normal matrix, column major (3x vec3<f32>)
	Scale     [3]float32  // offset 116: instance scale (vec3<f32>)
}

// Size returns the size of the GPUModelInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (g *GPUModelInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload.
func (g *GPUModelInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Transform[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.Color[i]))
	}
	for i := range 9 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.Normal[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[116+i*4:], math.Float32bits(g.Scale[i]))
	}
	return buf
}

// GPUSpriteInstance is one packed per-instance record in a sprite batch's
// instance buffer.
// Matches the WGSL InstanceInput struct layout in sprite.wgsl.
// Size: 96 bytes.
type GPUSpriteInstance struct {
	Size      [2]float32  // offset  0: sprite extents in world units (vec2<f32>)
	_pad      [2]float32  // offset  8: padding to 16-byte attribute boundary
	Transform [16]float32 // offset 16: world transform matrix (mat4x4<f32>)
	Color     [4]float32  // offset 80: instance tint color (vec4<f32>)
}

// RecordSize returns the size of the GPUSpriteInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUSpriteInstance) RecordSize() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload.
func (g *GPUSpriteInstance) Marshal() []byte {
	buf := make([]byte, g.RecordSize())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Size[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Size[1]))
	binary.LittleEndian.PutUint32(buf[8:12], 0)
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Transform[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}

// GPUPanelUniform is the per-panel uniform record for the UI background shader.
// SelectionRange is the normalized [start, end) vertical band highlighted as
// the selected option.
// Matches the WGSL PanelUniform struct layout in ui3d.wgsl.
// Size: 64 bytes.
type GPUPanelUniform struct {
	Size           [2]float32 // offset  0: panel extents in world units (vec2<f32>)
	_pad           [2]float32 // offset  8: padding to vec4 boundary
	MenuColor      [4]float32 // offset 16: panel background color (vec4<f32>)
	SelectionColor [4]float32 // offset 32: highlight color for the selected option (vec4<f32>)
	SelectionRange [2]float32 // offset 48: normalized Y band of the selection (vec2<f32>)
	_pad2          [2]float32 // offset 56: padding to 64 bytes
}

// RecordSize returns the size of the GPUPanelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPanelUniform) RecordSize() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPanelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUPanelUniform) Marshal() []byte {
	buf := make([]byte, g.RecordSize())
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Size[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Size[1]))
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.MenuColor[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.SelectionColor[i]))
	}
	binary.LittleEndian.PutUint32(buf[48:52], math.Float32bits(g.SelectionRange[0]))
	binary.LittleEndian.PutUint32(buf[52:56], math.Float32bits(g.SelectionRange[1]))
	return buf
}

// GPUPlacementUniform carries one UI entity's world transform to both the
// panel and text shaders.
// Size: 64 bytes.
type GPUPlacementUniform struct {
	Transform [16]float32 // offset 0: world transform matrix (mat4x4<f32>)
}

// Size returns the size of the GPUPlacementUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUPlacementUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPlacementUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUPlacementUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Transform[i]))
	}
	return buf
}

// GPUGlyphInstance is one laid-out glyph quad in a UI entity's text geometry,
// expressed in panel-local units. Rect and UVRect are (x, y, width, height).
// Matches the WGSL InstanceInput struct layout in ui3d_text.wgsl.
// Size: 48 bytes.
type GPUGlyphInstance struct {
	Rect   [4]float32 // offset  0: glyph quad in panel space (vec4<f32>)
	UVRect [4]float32 // offset 16: glyph region in the atlas texture (vec4<f32>)
	Color  [4]float32 // offset 32: glyph color (vec4<f32>)
}

// Size returns the size of the GPUGlyphInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUGlyphInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGlyphInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload.
func (g *GPUGlyphInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Rect[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.UVRect[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Color[i]))
	}
	return buf
}
