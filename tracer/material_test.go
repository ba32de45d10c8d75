package tracer

import (
	"testing"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

func materialTestTracer(materials ...scene.Material) *Tracer {
	tr := New(&scene.Scene{Materials: materials}, Config{MaxBounces: 5})
	tr.rand = NewRand(DefaultSeed)
	return tr
}

func TestLambertianScatter(t *testing.T) {
	albedo := types.XYZ(0.8, 0.3, 0.3)
	tr := materialTestTracer(scene.NewLambertian(albedo))

	hit := Hit{
		Point:     types.XYZ(0, 0, -1),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}
	r := NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))

	for i := 0; i < 50; i++ {
		res := tr.scatter(r, &hit)
		if res.kind != scattered {
			t.Fatalf("[draw %d] expected a scattered ray; got kind %d", i, res.kind)
		}
		if res.color != albedo {
			t.Fatalf("[draw %d] expected attenuation %v; got %v", i, albedo, res.color)
		}
		if res.ray.Origin != hit.Point {
			t.Fatalf("[draw %d] expected the scattered ray to start at the hit point; got %v", i, res.ray.Origin)
		}
		if dot := res.ray.Dir.Dot(hit.Normal); dot <= 0 {
			t.Fatalf("[draw %d] expected the scattered ray to leave the surface; got dot %f", i, dot)
		}
		if l := res.ray.Dir.Len(); !floatNear(l, 1, 1e-5) {
			t.Fatalf("[draw %d] expected a unit scatter direction; got length %f", i, l)
		}
	}
}

func TestTexturedLambertianScatter(t *testing.T) {
	tex := &scene.Texture{
		Width:  2,
		Height: 1,
		Filter: scene.NearestFilter,
		Pix:    []types.Vec3{types.XYZ(1, 0, 0), types.XYZ(0, 0, 1)},
	}
	tr := materialTestTracer(scene.NewTexturedLambertian(tex))

	hit := Hit{
		Point:     types.XYZ(0, 0, -1),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
		U:         0.75,
		V:         0.25,
	}
	res := tr.scatter(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit)
	if res.kind != scattered {
		t.Fatalf("expected a scattered ray; got kind %d", res.kind)
	}
	if exp := types.XYZ(0, 0, 1); res.color != exp {
		t.Fatalf("expected the sampled texel %v as attenuation; got %v", exp, res.color)
	}
}

func TestMetalScatterMirror(t *testing.T) {
	albedo := types.XYZ(0.9, 0.9, 0.9)
	tr := materialTestTracer(scene.NewMetal(albedo, 0))

	hit := Hit{
		Point:     types.XYZ(0, 0, 0),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}
	res := tr.scatter(NewRay(types.XYZ(-1, 0, 1), types.XYZ(1, 0, -1).Normalize()), &hit)
	if res.kind != scattered {
		t.Fatalf("expected a scattered ray; got kind %d", res.kind)
	}
	if res.color != albedo {
		t.Fatalf("expected attenuation %v; got %v", albedo, res.color)
	}
	if exp := types.XYZ(1, 0, 1).Normalize(); !vecNear(res.ray.Dir, exp, 1e-5) {
		t.Fatalf("expected mirror reflection %v; got %v", exp, res.ray.Dir)
	}
}

func TestMetalScatterWithFuzz(t *testing.T) {
	hit := Hit{
		Point:     types.XYZ(0, 0, 0),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}
	r := NewRay(types.XYZ(-1, 0, 0.02), types.XYZ(1, 0, -0.02).Normalize())

	// A maximally fuzzy metal hit at a grazing angle lands on both sides
	// of the surface depending on the perturbation.
	var scatteredCount, absorbedCount int
	for seed := 0; seed < 100; seed++ {
		tr := materialTestTracer(scene.NewMetal(types.XYZ(0.9, 0.9, 0.9), 1))
		tr.rand = NewRand(uint64(seed))

		res := tr.scatter(r, &hit)
		switch res.kind {
		case scattered:
			scatteredCount++
			if dot := res.ray.Dir.Dot(hit.Normal); dot <= 0 {
				t.Fatalf("[seed %d] expected scattered rays to leave the surface; got dot %f", seed, dot)
			}
			if l := res.ray.Dir.Len(); !floatNear(l, 1, 1e-5) {
				t.Fatalf("[seed %d] expected a unit scatter direction; got length %f", seed, l)
			}
		case absorbed:
			absorbedCount++
		default:
			t.Fatalf("[seed %d] unexpected scatter kind %d", seed, res.kind)
		}
	}
	if scatteredCount == 0 || absorbedCount == 0 {
		t.Fatalf("expected both scattered and absorbed outcomes; got %d scattered, %d absorbed", scatteredCount, absorbedCount)
	}
}

func TestGlassTotalInternalReflection(t *testing.T) {
	tr := materialTestTracer(scene.NewGlass(1.5))

	// A ray inside the dielectric hitting the surface well past the
	// critical angle must reflect without consulting the RNG.
	hit := Hit{
		Point:     types.XYZ(0.6, 0, 0.8),
		Normal:    types.XYZ(-0.6, 0, -0.8),
		FrontFace: false,
	}
	res := tr.scatter(NewRay(types.XYZ(0, 0, 0.8), types.XYZ(1, 0, 0)), &hit)
	if res.kind != scattered {
		t.Fatalf("expected a scattered ray; got kind %d", res.kind)
	}
	if exp := types.XYZ(1, 1, 1); res.color != exp {
		t.Fatalf("expected glass attenuation %v; got %v", exp, res.color)
	}
	if exp := types.XYZ(0.28, 0, -0.96); !vecNear(res.ray.Dir, exp, 1e-5) {
		t.Fatalf("expected total internal reflection %v; got %v", exp, res.ray.Dir)
	}
}

func TestGlassNormalIncidence(t *testing.T) {
	tr := materialTestTracer(scene.NewGlass(1.5))

	hit := Hit{
		Point:     types.XYZ(0, 0, -1),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}

	// At normal incidence both the reflected and the refracted ray stay
	// on the surface normal.
	for i := 0; i < 20; i++ {
		res := tr.scatter(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit)
		if res.kind != scattered {
			t.Fatalf("[draw %d] expected a scattered ray; got kind %d", i, res.kind)
		}
		dir := res.ray.Dir
		if !floatNear(dir[0], 0, 1e-6) || !floatNear(dir[1], 0, 1e-6) {
			t.Fatalf("[draw %d] expected the ray to stay on the normal; got %v", i, dir)
		}
		if z := dir[2]; !floatNear(z, 1, 1e-6) && !floatNear(z, -1, 1e-6) {
			t.Fatalf("[draw %d] expected a unit z component; got %v", i, dir)
		}
	}
}

func TestLightEmission(t *testing.T) {
	emission := types.XYZ(4, 4, 4)
	tr := materialTestTracer(scene.NewLight(emission))

	hit := Hit{
		Point:     types.XYZ(0, 0, -1),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}
	res := tr.scatter(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit)
	if res.kind != emitted {
		t.Fatalf("expected an emission; got kind %d", res.kind)
	}
	if res.color != emission {
		t.Fatalf("expected emitted color %v; got %v", emission, res.color)
	}
}

func TestUnknownMaterialAbsorbs(t *testing.T) {
	tr := materialTestTracer(scene.Material{Type: 250})

	hit := Hit{
		Point:     types.XYZ(0, 0, -1),
		Normal:    types.XYZ(0, 0, 1),
		FrontFace: true,
	}
	res := tr.scatter(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), &hit)
	if res.kind != absorbed {
		t.Fatalf("expected the ray to be absorbed; got kind %d", res.kind)
	}
}

func TestSchlickReflectance(t *testing.T) {
	specs := []struct {
		cosTheta float32
		ratio    float32
		exp      float32
	}{
		{cosTheta: 1, ratio: 1.5, exp: 0.04},
		{cosTheta: 1, ratio: 1 / 1.5, exp: 0.04},
		{cosTheta: 0, ratio: 1.5, exp: 1},
		{cosTheta: 0, ratio: 1 / 1.5, exp: 1},
	}
	for specIndex, spec := range specs {
		if got := schlick(spec.cosTheta, spec.ratio); !floatNear(got, spec.exp, 1e-6) {
			t.Fatalf("[spec %d] expected schlick(%f, %f)=%f; got %f", specIndex, spec.cosTheta, spec.ratio, spec.exp, got)
		}
	}
}
