package compiler

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

func TestCompileScene(t *testing.T) {
	parsed := input.NewScene()
	parsed.Screen = input.Screen{
		TopLeft:  types.XYZ(-2, 1.5, -1),
		TopEdge:  types.XYZ(4, 0, 0),
		LeftEdge: types.XYZ(0, -3, 0),
		Width:    200,
		Height:   100,
		Samples:  16,
		Bounces:  8,
	}
	parsed.Camera.Eye = types.XYZ(0, 0, 1)
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.8, 0.3, 0.3)},
		{Type: scene.MetalMaterial, Albedo: types.XYZ(0.9, 0.9, 0.9), Fuzz: 1.5},
		{Type: scene.MetalMaterial, Albedo: types.XYZ(0.9, 0.9, 0.9), Fuzz: 2.0},
		{Type: scene.GlassMaterial, IOR: 1.5},
		{Type: scene.LightMaterial, Albedo: types.XYZ(4, 4, 4)},
	}
	parsed.Spheres = []input.Sphere{
		{Center: types.XYZ(0, 0, -5), Radius: 1, MaterialIndex: 0},
		{Center: types.XYZ(2, 0, -5), Radius: 1, MaterialIndex: 2},
	}
	parsed.Planes = []input.Plane{
		{Point: types.XYZ(0, -1, 0), Normal: types.XYZ(0, 2, 0), MaterialIndex: 1},
	}
	parsed.Triangles = []input.Triangle{
		{
			Vertices:      [3]types.Vec3{types.XYZ(0, 0, -3), types.XYZ(1, 0, -3), types.XYZ(0, 1, -3)},
			MaterialIndex: 3,
		},
		{
			Vertices:      [3]types.Vec3{types.XYZ(0, 0, -4), types.XYZ(1, 0, -4), types.XYZ(0, 1, -4)},
			Normals:       [3]types.Vec3{types.XYZ(0, 0, 1), types.XYZ(0, 0, 1), types.XYZ(0, 0, 1)},
			HasNormals:    true,
			MaterialIndex: 4,
		},
	}

	compiled, err := Compile(parsed)
	if err != nil {
		t.Fatal(err)
	}

	// Both metal definitions clamp to fuzz 1 and must share one material.
	if expCount := 4; len(compiled.Materials) != expCount {
		t.Fatalf("expected %d materials after deduplication; got %d", expCount, len(compiled.Materials))
	}
	if expType := scene.MetalMaterial; compiled.Materials[1].Type != expType || compiled.Materials[1].Fuzz != 1 {
		t.Fatalf("expected material 1 to be a metal with fuzz 1; got type %s, fuzz %f", compiled.Materials[1].Type, compiled.Materials[1].Fuzz)
	}

	if exp, got := uint32(0), compiled.Spheres[0].Material; got != exp {
		t.Fatalf("expected sphere 0 to use material %d; got %d", exp, got)
	}
	if exp, got := uint32(1), compiled.Spheres[1].Material; got != exp {
		t.Fatalf("expected sphere 1 to remap to material %d; got %d", exp, got)
	}
	if exp, got := uint32(1), compiled.Planes[0].Material; got != exp {
		t.Fatalf("expected plane 0 to use material %d; got %d", exp, got)
	}

	if exp, got := types.XYZ(0, 1, 0), compiled.Planes[0].Normal; got != exp {
		t.Fatalf("expected plane normal to be normalized to %v; got %v", exp, got)
	}

	if exp, got := int32(scene.NoNormals), compiled.Triangles[0].Normals; got != exp {
		t.Fatalf("expected triangle 0 to have no vertex normals; got index %d", got)
	}
	if exp, got := int32(0), compiled.Triangles[1].Normals; got != exp {
		t.Fatalf("expected triangle 1 to reference vertex normal entry %d; got %d", exp, got)
	}
	if expCount := 1; len(compiled.VertexNormals) != expCount {
		t.Fatalf("expected %d vertex normal entries; got %d", expCount, len(compiled.VertexNormals))
	}
	if exp, got := uint32(2), compiled.Triangles[0].Material; got != exp {
		t.Fatalf("expected triangle 0 to use material %d; got %d", exp, got)
	}
	if exp, got := uint32(3), compiled.Triangles[1].Material; got != exp {
		t.Fatalf("expected triangle 1 to use material %d; got %d", exp, got)
	}

	if exp, got := 200, compiled.Screen.Width; got != exp {
		t.Fatalf("expected screen width %d; got %d", exp, got)
	}
	if exp, got := 16, compiled.Screen.SamplesPerPixel; got != exp {
		t.Fatalf("expected %d samples per pixel; got %d", exp, got)
	}
	if exp, got := 8, compiled.Screen.MaxBounces; got != exp {
		t.Fatalf("expected %d max bounces; got %d", exp, got)
	}
	if compiled.Camera == nil {
		t.Fatal("expected a compiled camera")
	}
	if exp, got := types.XYZ(0, 0, 1), compiled.Camera.Eye; got != exp {
		t.Fatalf("expected camera eye %v; got %v", exp, got)
	}

	if exp, got := scene.DefaultBackgroundBottom, compiled.BackgroundBottom; got != exp {
		t.Fatalf("expected background bottom %v; got %v", exp, got)
	}

	// With this few primitives each tree consists of a single leaf
	// spanning the entire primitive list.
	checkSingleLeaf(t, "sphere", compiled.SphereBvh, len(compiled.Spheres))
	checkSingleLeaf(t, "plane", compiled.PlaneBvh, len(compiled.Planes))
	checkSingleLeaf(t, "triangle", compiled.TriangleBvh, len(compiled.Triangles))
}

func checkSingleLeaf(t *testing.T, kind string, nodes []scene.BvhNode, itemCount int) {
	t.Helper()
	if expCount := 1; len(nodes) != expCount {
		t.Fatalf("expected %s BVH to contain %d node; got %d", kind, expCount, len(nodes))
	}
	if !nodes[0].IsLeaf() {
		t.Fatalf("expected %s BVH root to be a leaf", kind)
	}
	if nodes[0].First != 0 || int(nodes[0].Count) != itemCount {
		t.Fatalf("expected %s BVH leaf to span [0, %d); got [%d, %d)", kind, itemCount, nodes[0].First, nodes[0].First+nodes[0].Count)
	}
}

func TestCompileWithUnknownMaterialReference(t *testing.T) {
	specs := []struct {
		mutate   func(*input.Scene)
		expError string
	}{
		{
			func(s *input.Scene) { s.Spheres = []input.Sphere{{Radius: 1, MaterialIndex: 5}} },
			"compiler: sphere 0 references unknown material 5",
		},
		{
			func(s *input.Scene) {
				s.Planes = []input.Plane{{Normal: types.XYZ(0, 1, 0), MaterialIndex: -1}}
			},
			"compiler: plane 0 references unknown material -1",
		},
		{
			func(s *input.Scene) { s.Triangles = []input.Triangle{{MaterialIndex: 1}} },
			"compiler: triangle 0 references unknown material 1",
		},
	}

	for specIndex, spec := range specs {
		parsed := input.NewScene()
		parsed.Materials = []input.Material{
			{Type: scene.LambertianMaterial, Albedo: types.XYZ(0.5, 0.5, 0.5)},
		}
		spec.mutate(parsed)

		_, err := Compile(parsed)
		if err == nil || err.Error() != spec.expError {
			t.Fatalf("[spec %d] expected error %q; got %v", specIndex, spec.expError, err)
		}
	}
}

func TestCompileWithTexturedMaterials(t *testing.T) {
	texFile := filepath.Join(t.TempDir(), "albedo.png")
	writeTestTexture(t, texFile)

	parsed := input.NewScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, TexturePath: texFile, TextureFilter: scene.NearestFilter},
		{Type: scene.LambertianMaterial, TexturePath: texFile, TextureFilter: scene.NearestFilter},
		{Type: scene.LambertianMaterial, TexturePath: texFile, TextureFilter: scene.BilinearFilter},
	}

	compiled, err := Compile(parsed)
	if err != nil {
		t.Fatal(err)
	}

	// The first two materials share a cached texture and collapse into a
	// single entry; the third uses a different filter and stays separate.
	if expCount := 2; len(compiled.Materials) != expCount {
		t.Fatalf("expected %d materials; got %d", expCount, len(compiled.Materials))
	}
	if compiled.Materials[0].Texture == nil || compiled.Materials[1].Texture == nil {
		t.Fatal("expected both materials to carry a texture")
	}
	if compiled.Materials[0].Texture == compiled.Materials[1].Texture {
		t.Fatal("expected materials with different filters to use separate texture instances")
	}
}

func TestCompileWithMissingTexture(t *testing.T) {
	parsed := input.NewScene()
	parsed.Materials = []input.Material{
		{Type: scene.LambertianMaterial, TexturePath: "/does/not/exist.png"},
	}

	_, err := Compile(parsed)
	if err == nil || !strings.Contains(err.Error(), `could not open texture "/does/not/exist.png"`) {
		t.Fatalf("expected a texture open error; got %v", err)
	}
}

func TestCompileEmptyScene(t *testing.T) {
	parsed := input.NewScene()
	parsed.Screen.Width = 64
	parsed.Screen.Height = 64
	parsed.Screen.Samples = 1
	parsed.Screen.Bounces = 1

	compiled, err := Compile(parsed)
	if err != nil {
		t.Fatal(err)
	}

	if len(compiled.SphereBvh) != 0 || len(compiled.PlaneBvh) != 0 || len(compiled.TriangleBvh) != 0 {
		t.Fatalf(
			"expected empty BVH trees; got %d sphere, %d plane, %d triangle nodes",
			len(compiled.SphereBvh), len(compiled.PlaneBvh), len(compiled.TriangleBvh),
		)
	}
	if compiled.Camera == nil {
		t.Fatal("expected a compiled camera")
	}
}

func writeTestTexture(t *testing.T, pathToFile string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	f, err := os.Create(pathToFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err = png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
