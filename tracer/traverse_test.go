package tracer

import (
	"math"
	"testing"

	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

func TestNearestHitMatchesBruteForce(t *testing.T) {
	rng := NewRand(42)
	parsed := gradientTestScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.5, 0.5, 0.5)},
	}
	for i := 0; i < 64; i++ {
		parsed.Spheres = append(parsed.Spheres, input.Sphere{
			Center:        randVec(&rng, 10),
			Radius:        0.2 + 0.8*rng.Float32(),
			MaterialIndex: 0,
		})
	}
	for i := 0; i < 64; i++ {
		base := randVec(&rng, 10)
		parsed.Triangles = append(parsed.Triangles, input.Triangle{
			Vertices: [3]types.Vec3{
				base,
				base.Add(randVec(&rng, 2)),
				base.Add(randVec(&rng, 2)),
			},
			MaterialIndex: 0,
		})
	}
	parsed.Planes = []input.Plane{
		{Point: types.XYZ(0, -11, 0), Normal: types.XYZ(0, 1, 0), MaterialIndex: 0},
		{Point: types.XYZ(0, 0, -15), Normal: types.XYZ(0.2, 0.1, 1).Normalize(), MaterialIndex: 0},
	}
	compiled := compileTestScene(t, parsed)

	tr := New(compiled, Config{})
	hits := 0
	for i := 0; i < 512; i++ {
		r := NewRay(randVec(&rng, 12), randDir(&rng))

		var hit Hit
		found := tr.nearestHit(r, minHitDistance, &hit)
		expT, expFound := bruteForceNearest(compiled, r, minHitDistance)
		if found != expFound {
			t.Fatalf("[ray %d] expected hit=%v; got hit=%v", i, expFound, found)
		}
		if found {
			hits++
			if d := hit.T - expT; d < -1e-3 || d > 1e-3 {
				t.Fatalf("[ray %d] expected nearest hit at t=%f; got t=%f", i, expT, hit.T)
			}
		}

		if got := tr.anyHit(r, minHitDistance, math.MaxFloat32); got != expFound {
			t.Fatalf("[ray %d] expected anyHit=%v; got %v", i, expFound, got)
		}
	}

	// The scene is dense enough that a traversal bug which never hits
	// anything would not slip through.
	if hits < 256 {
		t.Fatalf("expected at least half of the probe rays to hit; got %d/512", hits)
	}
}

func TestNearestHitTieBreak(t *testing.T) {
	// Two coincident spheres; the one stored first must win.
	parsed := gradientTestScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.9, 0.1, 0.1)},
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.1, 0.1, 0.9)},
	}
	parsed.Spheres = []input.Sphere{
		{Center: types.XYZ(0, 0, -5), Radius: 1, MaterialIndex: 1},
		{Center: types.XYZ(0, 0, -5), Radius: 1, MaterialIndex: 0},
	}
	compiled := compileTestScene(t, parsed)

	tr := New(compiled, Config{})
	var hit Hit
	if !tr.nearestHit(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), minHitDistance, &hit) {
		t.Fatal("expected the ray to hit")
	}
	if exp, got := uint32(1), hit.Material; got != exp {
		t.Fatalf("expected the first stored sphere (material %d) to win the tie; got material %d", exp, got)
	}
}

func TestNearestHitTieBreakAcrossShapeTypes(t *testing.T) {
	// A sphere and a plane touching at the same point; spheres are
	// traversed first and must win the exact tie.
	parsed := gradientTestScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.9, 0.1, 0.1)},
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.1, 0.1, 0.9)},
	}
	parsed.Spheres = []input.Sphere{
		{Center: types.XYZ(0, 0, 0), Radius: 1, MaterialIndex: 0},
	}
	parsed.Planes = []input.Plane{
		{Point: types.XYZ(0, 0, 1), Normal: types.XYZ(0, 0, 1), MaterialIndex: 1},
	}
	compiled := compileTestScene(t, parsed)

	tr := New(compiled, Config{})
	var hit Hit
	if !tr.nearestHit(NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), minHitDistance, &hit) {
		t.Fatal("expected the ray to hit")
	}
	if hit.T != 4 {
		t.Fatalf("expected both shapes to intersect at t=4; got %f", hit.T)
	}
	if exp, got := uint32(0), hit.Material; got != exp {
		t.Fatalf("expected the sphere (material %d) to win the cross type tie; got material %d", exp, got)
	}
}

func TestSingleSphereHeadOn(t *testing.T) {
	parsed := gradientTestScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.5, 0.5, 0.5)},
	}
	parsed.Spheres = []input.Sphere{
		{Center: types.XYZ(0, 0, 0), Radius: 1, MaterialIndex: 0},
	}
	compiled := compileTestScene(t, parsed)

	tr := New(compiled, Config{})
	var hit Hit
	if !tr.nearestHit(NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1)), minHitDistance, &hit) {
		t.Fatal("expected the ray to hit")
	}

	// The eye sits 5 units from the center of a unit sphere.
	if exp := float32(4); hit.T != exp {
		t.Fatalf("expected hit at t=%f (distance minus radius); got %f", exp, hit.T)
	}
	if !hit.FrontFace {
		t.Fatal("expected a front face hit")
	}
	if exp := types.XYZ(0, 0, 1); !vecNear(hit.Normal, exp, 1e-6) {
		t.Fatalf("expected the normal to point back at the eye %v; got %v", exp, hit.Normal)
	}
	if exp := types.XYZ(0, 0, 1); !vecNear(hit.Point, exp, 1e-6) {
		t.Fatalf("expected hit point %v; got %v", exp, hit.Point)
	}
}

func TestNearestHitWithEmptyScene(t *testing.T) {
	compiled := compileTestScene(t, gradientTestScene())

	tr := New(compiled, Config{})
	var hit Hit
	if tr.nearestHit(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), minHitDistance, &hit) {
		t.Fatal("expected no hit in an empty scene")
	}
	if tr.anyHit(NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1)), minHitDistance, math.MaxFloat32) {
		t.Fatal("expected no occlusion in an empty scene")
	}
}

// bruteForceNearest scans every primitive without the BVH.
func bruteForceNearest(s *scene.Scene, r Ray, tMin float32) (float32, bool) {
	closest := float32(math.MaxFloat32)
	found := false

	for i := range s.Spheres {
		if t, ok := sphereHit(r, &s.Spheres[i], tMin, closest); ok && t < closest {
			closest, found = t, true
		}
	}
	for i := range s.Planes {
		if t, ok := planeHit(r, &s.Planes[i], tMin, closest); ok && t < closest {
			closest, found = t, true
		}
	}
	for i := range s.Triangles {
		if t, _, _, ok := triangleHit(r, &s.Triangles[i], tMin, closest); ok && t < closest {
			closest, found = t, true
		}
	}
	return closest, found
}

func randVec(rng *Rand, extent float32) types.Vec3 {
	return types.XYZ(
		extent*(2*rng.Float32()-1),
		extent*(2*rng.Float32()-1),
		extent*(2*rng.Float32()-1),
	)
}

func randDir(rng *Rand) types.Vec3 {
	for {
		v := randVec(rng, 1)
		if sq := v.LenSq(); sq > 0.01 && sq < 1 {
			return v.Normalize()
		}
	}
}
