package tracer

import (
	"math"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

type scatterKind uint8

const (
	scattered scatterKind = iota
	absorbed
	emitted
)

// The outcome of a material interaction: a scattered ray with an
// attenuation color, full absorption, or emitted radiance that
// terminates the path.
type scatterResult struct {
	kind scatterKind
	ray  Ray

	// Attenuation for scattered rays, emitted radiance for lights.
	color types.Vec3
}

// scatter evaluates the hit material and produces the next path event.
func (t *Tracer) scatter(r Ray, hit *Hit) scatterResult {
	mat := &t.scene.Materials[hit.Material]

	switch mat.Type {
	case scene.LambertianMaterial:
		albedo := mat.Albedo
		if mat.Texture != nil {
			albedo = mat.Texture.Sample(hit.U, hit.V)
		}
		dir := cosineHemisphere(&t.rand, hit.Normal)
		return scatterResult{kind: scattered, ray: NewRay(hit.Point, dir), color: albedo}

	case scene.MetalMaterial:
		dir := reflect(r.Dir, hit.Normal)
		if mat.Fuzz > 0 {
			dir = dir.Add(inUnitSphere(&t.rand).Mul(mat.Fuzz))
		}
		if dir.Dot(hit.Normal) <= 0 {
			return scatterResult{kind: absorbed}
		}
		return scatterResult{kind: scattered, ray: NewRay(hit.Point, dir.Normalize()), color: mat.Albedo}

	case scene.GlassMaterial:
		ratio := mat.IOR
		if hit.FrontFace {
			ratio = 1 / mat.IOR
		}

		cosTheta := r.Dir.Neg().Dot(hit.Normal)
		if cosTheta > 1 {
			cosTheta = 1
		}
		sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))

		var dir types.Vec3
		if ratio*sinTheta > 1 || schlick(cosTheta, ratio) > t.rand.Float32() {
			dir = reflect(r.Dir, hit.Normal)
		} else {
			dir = refract(r.Dir, hit.Normal, ratio)
		}
		return scatterResult{kind: scattered, ray: NewRay(hit.Point, dir), color: mat.Albedo}

	case scene.LightMaterial:
		return scatterResult{kind: emitted, color: mat.Albedo}
	}

	return scatterResult{kind: absorbed}
}

// reflect mirrors the direction about the normal.
func reflect(dir, normal types.Vec3) types.Vec3 {
	return dir.Sub(normal.Mul(2 * dir.Dot(normal)))
}

// refract bends the unit direction through a surface with the given
// relative index of refraction (Snell's law). The caller must rule out
// total internal reflection first.
func refract(dir, normal types.Vec3, ratio float32) types.Vec3 {
	cosTheta := dir.Neg().Dot(normal)
	if cosTheta > 1 {
		cosTheta = 1
	}
	perp := dir.Add(normal.Mul(cosTheta)).Mul(ratio)
	par := normal.Mul(-float32(math.Sqrt(math.Abs(float64(1 - perp.LenSq())))))
	return perp.Add(par)
}

// schlick approximates the Fresnel reflectance for the given incidence
// cosine and relative index of refraction.
func schlick(cosTheta, ratio float32) float32 {
	r0 := (1 - ratio) / (1 + ratio)
	r0 *= r0
	return r0 + (1-r0)*pow5(1-cosTheta)
}

func pow5(x float32) float32 {
	x2 := x * x
	return x2 * x2 * x
}
