package pipelines

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kestrel3d/kestrel/common"
	"github.com/kestrel3d/kestrel/engine/renderer"
)

const (
	atlasFirstRune = ' '
	atlasLastRune  = '~'
	atlasCols      = 16
)

// TextAtlas rasterizes the printable ASCII range of a fixed bitmap font into
// one GPU texture at startup. Glyph quads reference cells of this texture by
// normalized UV rectangle.
type TextAtlas struct {
	texture renderer.Texture
	bind    renderer.BindGroup

	cellWidth  int
	cellHeight int
	rows       int
}

// NewTextAtlas builds the glyph atlas texture and its bind group.
//
// Parameters:
//   - b: the backend to upload the atlas through
//
// Returns:
//   - *TextAtlas: the ready atlas
func NewTextAtlas(b renderer.Backend) *TextAtlas {
	face := basicfont.Face7x13
	cellW := face.Advance
	cellH := face.Height
	glyphCount := int(atlasLastRune-atlasFirstRune) + 1
	rows := (glyphCount + atlasCols - 1) / atlasCols

	img := image.NewRGBA(image.Rect(0, 0, atlasCols*cellW, rows*cellH))
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
	}
	for i := range glyphCount {
		col := i % atlasCols
		row := i / atlasCols
		drawer.Dot = fixed.P(col*cellW, row*cellH+face.Ascent)
		drawer.DrawString(string(rune(atlasFirstRune + i)))
	}

	data := common.TextureData{
		Pixels: img.Pix,
		Width:  uint32(img.Bounds().Dx()),
		Height: uint32(img.Bounds().Dy()),
	}
	texture := b.CreateTexture("Text Atlas", data)

	return &TextAtlas{
		texture:    texture,
		bind:       b.CreateBindGroup("Text Atlas Bind Group", renderer.LayoutTexture, texture),
		cellWidth:  cellW,
		cellHeight: cellH,
		rows:       rows,
	}
}

// Bind returns the atlas texture bind group.
func (a *TextAtlas) Bind() renderer.BindGroup {
	return a.bind
}

// Release frees the atlas GPU resources.
func (a *TextAtlas) Release() {
	a.bind.Release()
	a.texture.Release()
}

// glyphUV returns the normalized UV rectangle (x, y, width, height) for a
// rune, or false for runes outside the atlas range.
func (a *TextAtlas) glyphUV(r rune) ([4]float32, bool) {
	if r < atlasFirstRune || r > atlasLastRune {
		return [4]float32{}, false
	}
	i := int(r - atlasFirstRune)
	col := i % atlasCols
	row := i / atlasCols
	return [4]float32{
		float32(col) / atlasCols,
		float32(row) / float32(a.rows),
		1.0 / atlasCols,
		1.0 / float32(a.rows),
	}, true
}

// GlyphAspect returns the width/height ratio of one glyph cell.
func (a *TextAtlas) GlyphAspect() float32 {
	return float32(a.cellWidth) / float32(a.cellHeight)
}

// Layout lays out the menu lines as glyph quads in panel-local space: lines
// stacked top to bottom at fontSize units per line, each line centered
// horizontally. Spaces advance the pen without emitting a quad; unknown runes
// are skipped.
//
// Parameters:
//   - lines: the text lines, top first
//   - fontSize: line height in panel units
//   - color: glyph color
//
// Returns:
//   - []GPUGlyphInstance: laid-out glyph quads
func (a *TextAtlas) Layout(lines []string, fontSize float32, color [4]float32) []GPUGlyphInstance {
	glyphWidth := fontSize * a.GlyphAspect()
	totalHeight := fontSize * float32(len(lines))

	var glyphs []GPUGlyphInstance
	for li, line := range lines {
		lineTop := totalHeight/2 - float32(li)*fontSize
		x := -glyphWidth * float32(len(line)) / 2
		for _, r := range line {
			uv, ok := a.glyphUV(r)
			if !ok || r == ' ' {
				x += glyphWidth
				continue
			}
			glyphs = append(glyphs, GPUGlyphInstance{
				Rect:   [4]float32{x, lineTop - fontSize, glyphWidth, fontSize},
				UVRect: uv,
				Color:  color,
			})
			x += glyphWidth
		}
	}
	return glyphs
}

// MarshalGlyphs packs a glyph slice into upload-ready bytes.
//
// Parameters:
//   - glyphs: the laid-out glyphs to pack
//
// Returns:
//   - []byte: tightly packed instance data
func MarshalGlyphs(glyphs []GPUGlyphInstance) []byte {
	buf := make([]byte, 0, len(glyphs)*48)
	for i := range glyphs {
		buf = append(buf, glyphs[i].Marshal()...)
	}
	return buf
}
