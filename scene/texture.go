package scene

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

type TextureFilter uint8

const (
	BilinearFilter TextureFilter = iota
	NearestFilter
)

// A decoded color grid sampled by UV coordinates. Texel colors are stored
// as float32 RGB in row-major order with (0,0) mapping to the top-left
// texel. Coordinates outside [0,1) wrap around.
type Texture struct {
	Width  int
	Height int
	Filter TextureFilter
	Pix    []types.Vec3
}

// Look up the texture color at (u, v).
func (t *Texture) Sample(u, v float32) types.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return types.Vec3{}
	}
	u -= float32(math.Floor(float64(u)))
	v -= float32(math.Floor(float64(v)))

	if t.Filter == NearestFilter {
		x := clampTexel(int(u*float32(t.Width)), t.Width)
		y := clampTexel(int(v*float32(t.Height)), t.Height)
		return t.Pix[y*t.Width+x]
	}

	// Bilinear filtering with wrap-around at the borders.
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	x0 = wrapTexel(x0, t.Width)
	y0 = wrapTexel(y0, t.Height)
	x1 := wrapTexel(x0+1, t.Width)
	y1 := wrapTexel(y0+1, t.Height)

	top := t.Pix[y0*t.Width+x0].Lerp(t.Pix[y0*t.Width+x1], dx)
	bottom := t.Pix[y1*t.Width+x0].Lerp(t.Pix[y1*t.Width+x1], dx)
	return top.Lerp(bottom, dy)
}

func clampTexel(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}

func wrapTexel(v, limit int) int {
	v %= limit
	if v < 0 {
		v += limit
	}
	return v
}
