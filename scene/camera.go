package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/lumen/types"
)

// The camera type anchors the image plane in world space. Primary rays
// start at Eye and pass through points of the screen parallelogram
// spanned by TopEdge and LeftEdge from the TopLeft corner; per pixel
// rays are generated by interpolating along the two edges.
type Camera struct {
	Eye      types.Vec3
	TopLeft  types.Vec3
	TopEdge  types.Vec3
	LeftEdge types.Vec3
}

// Create a camera from an explicit screen parallelogram.
func NewCamera(eye, topLeft, topEdge, leftEdge types.Vec3) *Camera {
	return &Camera{
		Eye:      eye,
		TopLeft:  topLeft,
		TopEdge:  topEdge,
		LeftEdge: leftEdge,
	}
}

// Create a camera at eye looking towards target. The screen plane is
// placed one unit in front of the eye; fov is the vertical field of view
// in degrees and aspect the width/height ratio of the frame.
func NewLookAtCamera(eye, target, up types.Vec3, fov, aspect float32) *Camera {
	fwd := target.Sub(eye).Normalize()
	right := fwd.Cross(up).Normalize()
	camUp := right.Cross(fwd)

	halfH := float32(math.Tan(float64(fov) * 0.5 * math.Pi / 180.0))
	halfW := halfH * aspect

	center := eye.Add(fwd)
	return &Camera{
		Eye:      eye,
		TopLeft:  center.Sub(right.Mul(halfW)).Add(camUp.Mul(halfH)),
		TopEdge:  right.Mul(2 * halfW),
		LeftEdge: camUp.Mul(-2 * halfH),
	}
}

// Generate the origin and unit direction of the primary ray through
// screen coordinates (u, v); (0,0) is the top-left corner of the screen
// and (1,1) the bottom-right.
func (c *Camera) Ray(u, v float32) (types.Vec3, types.Vec3) {
	p := c.TopLeft.Add(c.TopEdge.Mul(u)).Add(c.LeftEdge.Mul(v))
	return c.Eye, p.Sub(c.Eye).Normalize()
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera:\neye : (%3.3f, %3.3f, %3.3f)\nTL  : (%3.3f, %3.3f, %3.3f)\nTE  : (%3.3f, %3.3f, %3.3f)\nLE  : (%3.3f, %3.3f, %3.3f)",
		c.Eye[0], c.Eye[1], c.Eye[2],
		c.TopLeft[0], c.TopLeft[1], c.TopLeft[2],
		c.TopEdge[0], c.TopEdge[1], c.TopEdge[2],
		c.LeftEdge[0], c.LeftEdge[1], c.LeftEdge[2],
	)
}
