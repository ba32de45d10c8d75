package tracer

import (
	"testing"

	"github.com/achilleasa/lumen/types"
)

func TestCosineHemisphere(t *testing.T) {
	rng := NewRand(1)

	for _, normal := range []types.Vec3{
		types.XYZ(0, 0, 1),
		types.XYZ(0, 1, 0),
		types.XYZ(0.6, 0, 0.8),
	} {
		var sumCos float64
		for i := 0; i < 10000; i++ {
			dir := cosineHemisphere(&rng, normal)
			if l := dir.Len(); !floatNear(l, 1, 1e-5) {
				t.Fatalf("[normal %v, draw %d] expected a unit direction; got length %f", normal, i, l)
			}
			dot := dir.Dot(normal)
			if dot <= 0 {
				t.Fatalf("[normal %v, draw %d] expected the direction to stay in the hemisphere; got dot %f", normal, i, dot)
			}
			sumCos += float64(dot)
		}

		// Cosine weighting concentrates samples around the normal; the
		// mean cosine of the lobe is 2/3.
		mean := sumCos / 10000
		if mean < 0.64 || mean > 0.69 {
			t.Fatalf("[normal %v] expected a mean cosine near 2/3; got %f", normal, mean)
		}
	}
}

func TestInUnitSphere(t *testing.T) {
	rng := NewRand(1)

	var spread bool
	for i := 0; i < 1000; i++ {
		p := inUnitSphere(&rng)
		if sq := p.LenSq(); sq >= 1 {
			t.Fatalf("[draw %d] expected a point inside the unit sphere; got squared length %f", i, sq)
		} else if sq > 0.25 {
			spread = true
		}
	}
	if !spread {
		t.Fatal("expected draws to cover the outer shell of the sphere")
	}
}
