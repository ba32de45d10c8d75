package tracer

import (
	"math"

	"github.com/achilleasa/lumen/types"
)

// cosineHemisphere samples a cosine-weighted direction on the
// hemisphere around the unit normal. The construction maps a uniform
// disk sample up onto the hemisphere and always yields a unit vector.
func cosineHemisphere(rand *Rand, normal types.Vec3) types.Vec3 {
	a := 2 * math.Pi * float64(rand.Float32())
	z := rand.Float32()

	r := float32(math.Sqrt(float64(z)))
	x := r * float32(math.Cos(a))
	y := r * float32(math.Sin(a))
	zn := float32(math.Sqrt(float64(1 - z)))

	tangent, bitangent := tangentBasis(normal)
	return tangent.Mul(x).Add(bitangent.Mul(y)).Add(normal.Mul(zn))
}

// inUnitSphere samples a point inside the unit sphere by rejection.
func inUnitSphere(rand *Rand) types.Vec3 {
	for {
		p := types.XYZ(2*rand.Float32()-1, 2*rand.Float32()-1, 2*rand.Float32()-1)
		if p.LenSq() < 1 {
			return p
		}
	}
}
