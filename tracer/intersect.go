package tracer

import (
	"math"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// Rays closer to parallel than this to a surface and triangles with a
// smaller determinant are treated as misses.
const intersectEpsilon = 1e-8

// sphereHit solves the ray/sphere quadratic and returns the smallest
// root within [tMin, tMax]. Degenerate spheres never hit.
func sphereHit(r Ray, s *scene.Sphere, tMin, tMax float32) (float32, bool) {
	if s.Radius <= 0 {
		return 0, false
	}

	oc := r.Origin.Sub(s.Center)
	h := oc.Dot(r.Dir)
	disc := h*h - oc.LenSq() + s.Radius*s.Radius
	if disc < 0 {
		return 0, false
	}

	sq := float32(math.Sqrt(float64(disc)))
	if t := -h - sq; t >= tMin && t <= tMax {
		return t, true
	}
	if t := -h + sq; t >= tMin && t <= tMax {
		return t, true
	}
	return 0, false
}

// planeHit intersects the ray with an infinite plane. Rays parallel to
// the plane miss, as do planes with a degenerate (zero) normal.
func planeHit(r Ray, p *scene.Plane, tMin, tMax float32) (float32, bool) {
	denom := p.Normal.Dot(r.Dir)
	if denom > -intersectEpsilon && denom < intersectEpsilon {
		return 0, false
	}

	t := p.Point.Sub(r.Origin).Dot(p.Normal) / denom
	if t < tMin || t > tMax {
		return 0, false
	}
	return t, true
}

// triangleHit runs the Moeller-Trumbore test and returns the hit
// distance and barycentric coordinates. Degenerate (zero area)
// triangles yield a near zero determinant and miss.
func triangleHit(r Ray, tri *scene.Triangle, tMin, tMax float32) (t, u, v float32, ok bool) {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)

	pvec := r.Dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1 / det

	tvec := r.Origin.Sub(tri.V0)
	u = tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(edge1)
	v = r.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = edge2.Dot(qvec) * invDet
	if t < tMin || t > tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// fillSphereHit completes the hit record for a sphere intersection at
// distance t.
func fillSphereHit(r Ray, s *scene.Sphere, t float32, hit *Hit) {
	point := r.At(t)
	outward := point.Sub(s.Center).Mul(1 / s.Radius)

	hit.T = t
	hit.Point = point
	hit.Material = s.Material
	hit.U, hit.V = sphereUV(outward)
	hit.setNormals(r, outward, outward)
}

// fillPlaneHit completes the hit record for a plane intersection at
// distance t. UVs are planar coordinates in the plane's tangent basis
// and rely on the texture sampler's repeat wrapping.
func fillPlaneHit(r Ray, p *scene.Plane, t float32, hit *Hit) {
	point := r.At(t)
	tangent, bitangent := tangentBasis(p.Normal)
	rel := point.Sub(p.Point)

	hit.T = t
	hit.Point = point
	hit.Material = p.Material
	hit.U = rel.Dot(tangent)
	hit.V = rel.Dot(bitangent)
	hit.setNormals(r, p.Normal, p.Normal)
}

// fillTriangleHit completes the hit record for a triangle intersection
// at distance t, re-deriving the barycentric coordinates and blending
// the vertex shading normals when the triangle carries them.
func fillTriangleHit(r Ray, tri *scene.Triangle, vertexNormals []scene.VertexNormals, t float32, hit *Hit) {
	_, u, v, _ := triangleHit(r, tri, 0, math.MaxFloat32)

	geom := tri.V1.Sub(tri.V0).Cross(tri.V2.Sub(tri.V0)).Normalize()
	shading := geom
	if tri.Normals != scene.NoNormals {
		n := vertexNormals[tri.Normals]
		shading = n[0].Mul(1 - u - v).Add(n[1].Mul(u)).Add(n[2].Mul(v)).Normalize()
	}

	hit.T = t
	hit.Point = r.At(t)
	hit.Material = tri.Material
	hit.U = u
	hit.V = v
	hit.setNormals(r, geom, shading)
}

// sphereUV maps a point on the unit sphere to spherical surface
// coordinates with u in [0, 1] around the y axis and v in [0, 1] from
// the south to the north pole.
func sphereUV(p types.Vec3) (float32, float32) {
	y := float64(-p[1])
	if y < -1 {
		y = -1
	} else if y > 1 {
		y = 1
	}
	theta := math.Acos(y)
	phi := math.Atan2(float64(-p[2]), float64(p[0])) + math.Pi
	return float32(phi / (2 * math.Pi)), float32(theta / math.Pi)
}

// tangentBasis builds an orthonormal basis perpendicular to the unit
// vector n.
func tangentBasis(n types.Vec3) (types.Vec3, types.Vec3) {
	up := types.XYZ(1, 0, 0)
	if n[0] > 0.1 || n[0] < -0.1 {
		up = types.XYZ(0, 1, 0)
	}
	tangent := up.Cross(n).Normalize()
	return tangent, n.Cross(tangent)
}
