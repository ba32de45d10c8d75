package tracer

import "github.com/achilleasa/lumen/types"

// A ray in world space. Dir must be normalized; the intersection code
// and the background gradient rely on it.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

func NewRay(origin, dir types.Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Valid reports whether the ray can be traced. Rays with NaN or zero
// length directions are rejected and their samples discarded.
func (r Ray) Valid() bool {
	return !r.Dir.IsNaN() && !r.Dir.NearZero()
}

// Details about the closest ray/primitive intersection.
type Hit struct {
	// Parametric distance along the ray.
	T float32

	// Intersection point in world space.
	Point types.Vec3

	// Shading normal, flipped towards the incoming ray.
	Normal types.Vec3

	// Geometric normal, flipped towards the incoming ray.
	GeomNormal types.Vec3

	// True when the ray hit the primitive from the outside.
	FrontFace bool

	// Surface parametrization at the hit point.
	U float32
	V float32

	// Index into the scene material list.
	Material uint32
}

// setNormals orients the hit normals so both face the incoming ray.
// geom is the geometric normal as computed by the primitive and shading
// the interpolated surface normal, which is flipped onto the geometric
// side when the two disagree.
func (h *Hit) setNormals(r Ray, geom, shading types.Vec3) {
	h.FrontFace = r.Dir.Dot(geom) < 0
	if !h.FrontFace {
		geom = geom.Neg()
	}
	if shading.Dot(geom) < 0 {
		shading = shading.Neg()
	}
	h.GeomNormal = geom
	h.Normal = shading
}
