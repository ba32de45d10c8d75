package asset

import (
	"fmt"
	"image"

	// Register the decoders for the supported texture formats.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// Decode a texture image from a resource into a sampler-ready texel
// grid. Texel values are converted to linear radiance by undoing the
// gamma 2.0 transfer that the film exporter applies, so textured
// surfaces round-trip through render and export without a color shift.
func LoadTexture(res *Resource, filter scene.TextureFilter) (*scene.Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err.Error())
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture: empty image %s", res.Path())
	}

	pix := make([]types.Vec3, width*height)
	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix[offset] = types.XYZ(
				linearize(r),
				linearize(g),
				linearize(b),
			)
			offset++
		}
	}

	return &scene.Texture{
		Width:  width,
		Height: height,
		Filter: filter,
		Pix:    pix,
	}, nil
}

// Map a 16-bit gamma encoded channel value to linear [0, 1].
func linearize(channel uint32) float32 {
	v := float32(channel) / 0xffff
	return v * v
}
