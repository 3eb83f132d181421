// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Size is a window or surface extent in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// TextureData holds decoded RGBA pixel data ready for GPU upload.
// The renderer's texture cache consumes this directly; how the pixels were
// produced (decoded file, procedural generation, font atlas) is up to the host.
type TextureData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// DecodeImageBytes decodes PNG or JPEG image bytes into RGBA texture data.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - data: raw image file bytes
//
// Returns:
//   - TextureData: decoded RGBA pixels with dimensions
//   - error: error if decoding fails
func DecodeImageBytes(data []byte) (TextureData, error) {
	if len(data) == 0 {
		return TextureData{}, fmt.Errorf("image data is empty")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureData{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return imageToRGBA(img), nil
}

// DecodeImageFile loads and decodes a PNG or JPEG image file into RGBA texture data.
//
// Parameters:
//   - path: image file path on disk
//
// Returns:
//   - TextureData: decoded RGBA pixels with dimensions
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (TextureData, error) {
	file, err := os.Open(path)
	if err != nil {
		return TextureData{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return TextureData{}, fmt.Errorf("failed to decode image file %s: %w", path, err)
	}
	return imageToRGBA(img), nil
}

func imageToRGBA(img image.Image) TextureData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return TextureData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}
