package scene

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// Padding applied to degenerate bounding box axes so that axis-aligned
// primitives still register in the BVH slab test.
const aabbPadEpsilon = 1e-4

// Marker for triangles without per-vertex shading normals.
const NoNormals = -1

// Defines a scene sphere.
type Sphere struct {
	Center types.Vec3
	Radius float32

	// Index into the scene material list.
	Material uint32
}

// Defines an infinite scene plane.
type Plane struct {
	Point types.Vec3

	// Unit plane normal.
	Normal types.Vec3

	// Index into the scene material list.
	Material uint32
}

// Defines a scene triangle.
type Triangle struct {
	V0 types.Vec3
	V1 types.Vec3
	V2 types.Vec3

	// Index into the scene vertex normal list or NoNormals when the
	// triangle only carries a geometric normal.
	Normals int32

	// Index into the scene material list.
	Material uint32
}

// The three unit shading normals at the corners of a triangle, in the
// same order as the triangle vertices.
type VertexNormals [3]types.Vec3

// Bounds returns the axis-aligned box enclosing the sphere.
func (s *Sphere) Bounds() (types.Vec3, types.Vec3) {
	r := s.Radius
	if r < aabbPadEpsilon {
		r = aabbPadEpsilon
	}
	extent := types.XYZ(r, r, r)
	return s.Center.Sub(extent), s.Center.Add(extent)
}

// Centroid returns the sphere center.
func (s *Sphere) Centroid() types.Vec3 {
	return s.Center
}

// Bounds returns an unbounded box; planes extend to infinity.
func (p *Plane) Bounds() (types.Vec3, types.Vec3) {
	inf := float32(math.Inf(1))
	return types.XYZ(-inf, -inf, -inf), types.XYZ(inf, inf, inf)
}

// Centroid returns the plane anchor point.
func (p *Plane) Centroid() types.Vec3 {
	return p.Point
}

// Bounds returns the axis-aligned box enclosing the triangle with
// degenerate axes padded by an epsilon.
func (t *Triangle) Bounds() (types.Vec3, types.Vec3) {
	min := types.MinVec3(types.MinVec3(t.V0, t.V1), t.V2)
	max := types.MaxVec3(types.MaxVec3(t.V0, t.V1), t.V2)
	for axis := 0; axis < 3; axis++ {
		if max[axis]-min[axis] < aabbPadEpsilon {
			min[axis] -= aabbPadEpsilon
			max[axis] += aabbPadEpsilon
		}
	}
	return min, max
}

// Centroid returns the triangle barycenter.
func (t *Triangle) Centroid() types.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}
