package reader

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

type textSceneReader struct {
	errContext

	logger log.Logger

	// The parsed scene.
	rawScene *input.Scene

	// Deduplicated material definitions.
	matToIndex map[input.Material]int

	sawScreen bool
	sawCamera bool
}

// Create a new text scene reader.
func newTextSceneReader() *textSceneReader {
	return &textSceneReader{
		logger:     log.New("scene reader"),
		rawScene:   input.NewScene(),
		matToIndex: make(map[input.Material]int, 0),
	}
}

// Read scene definition.
//
// Scene files are line-oriented; each non-empty line holds a single
// "name(args)" entry and lines starting with # are skipped:
//
//	screen(-1 2.5 10, 2 0 0, 0 -2 0, 1000, 1000, 10, 10)
//	camera(0 1.5 20)
//	background(0.2 0.2 0.8, 1 1 1)
//	spheres((0 1 -5, 1, lambertian(0.8 0.3 0.3)))
//	planes((0 -1 0, 0 1 0, metal(0.9 0.9 0.9, 0.05)))
//	triangles((0 0 -3, 1 0 -3, 0 1 -3, glass(1.5)))
//	obj((bunny.obj), (tri.obj, light(4 4 4)))
//
// screen and camera entries are required; everything else is optional.
func (r *textSceneReader) Read(res *asset.Resource) (*input.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, res.Path())
	start := time.Now()

	if err := r.parse(res); err != nil {
		return nil, err
	}
	if !r.sawScreen {
		return nil, r.emitError(res.Path(), 0, `scene does not define a "screen" entry`)
	}
	if !r.sawCamera {
		return nil, r.emitError(res.Path(), 0, `scene does not define a "camera" entry`)
	}

	r.rawScene.AssetRelPath = res
	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return r.rawScene, nil
}

// Parse the scene text format.
func (r *textSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, args, err := splitEntry(line)
		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}

		// obj entries emit their own errors so nested mesh parse
		// failures keep their error stack intact.
		if name == "obj" {
			if err = r.parseObjRefs(args, res, lineNum); err != nil {
				return err
			}
			continue
		}

		switch name {
		case "screen":
			err = r.parseScreen(args)
		case "camera":
			err = r.parseCamera(args)
		case "background":
			err = r.parseBackground(args)
		case "spheres":
			err = r.parseSpheres(args)
		case "planes":
			err = r.parsePlanes(args)
		case "triangles":
			err = r.parseTriangles(args)
		default:
			err = fmt.Errorf(`unknown entry "%s"`, name)
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
	}
	return scanner.Err()
}

// Parse a screen entry:
// screen(top_left, top_edge, left_edge, width, height, samples, bounces)
func (r *textSceneReader) parseScreen(args string) error {
	parts := splitArgs(args)
	if len(parts) != 7 {
		return fmt.Errorf(`unsupported syntax for "screen"; expected 7 arguments; got %d`, len(parts))
	}

	var err error
	if r.rawScene.Screen.TopLeft, err = parseVec3Arg(parts[0]); err != nil {
		return err
	}
	if r.rawScene.Screen.TopEdge, err = parseVec3Arg(parts[1]); err != nil {
		return err
	}
	if r.rawScene.Screen.LeftEdge, err = parseVec3Arg(parts[2]); err != nil {
		return err
	}

	dims := []struct {
		name string
		dst  *int
		min  int
	}{
		{"width", &r.rawScene.Screen.Width, 2},
		{"height", &r.rawScene.Screen.Height, 2},
		{"samples", &r.rawScene.Screen.Samples, 1},
		{"bounces", &r.rawScene.Screen.Bounces, 1},
	}
	for i, dim := range dims {
		v, err := parseIntArg(parts[3+i])
		if err != nil {
			return fmt.Errorf("could not parse %s: %s", dim.name, err.Error())
		}
		if v < dim.min {
			return fmt.Errorf("%s must be at least %d; got %d", dim.name, dim.min, v)
		}
		*dim.dst = v
	}

	r.sawScreen = true
	return nil
}

// Parse a camera entry: camera(eye)
func (r *textSceneReader) parseCamera(args string) error {
	parts := splitArgs(args)
	if len(parts) != 1 {
		return fmt.Errorf(`unsupported syntax for "camera"; expected 1 argument; got %d`, len(parts))
	}

	var err error
	if r.rawScene.Camera.Eye, err = parseVec3Arg(parts[0]); err != nil {
		return err
	}
	r.sawCamera = true
	return nil
}

// Parse a background entry: background(bottom, top)
func (r *textSceneReader) parseBackground(args string) error {
	parts := splitArgs(args)
	if len(parts) != 2 {
		return fmt.Errorf(`unsupported syntax for "background"; expected 2 arguments; got %d`, len(parts))
	}

	var err error
	if r.rawScene.BackgroundBottom, err = parseVec3Arg(parts[0]); err != nil {
		return err
	}
	if r.rawScene.BackgroundTop, err = parseVec3Arg(parts[1]); err != nil {
		return err
	}
	return nil
}

// Parse a spheres entry: spheres((center, radius, material), ...)
func (r *textSceneReader) parseSpheres(args string) error {
	for _, group := range splitArgs(args) {
		inner, err := stripParens(group)
		if err != nil {
			return err
		}
		parts := splitArgs(inner)
		if len(parts) != 3 {
			return fmt.Errorf(`unsupported syntax for "spheres" entry; expected (center, radius, material); got %d arguments`, len(parts))
		}

		var sphere input.Sphere
		if sphere.Center, err = parseVec3Arg(parts[0]); err != nil {
			return err
		}
		if sphere.Radius, err = parseFloatArg(parts[1]); err != nil {
			return err
		}
		if sphere.MaterialIndex, err = r.parseMaterial(parts[2]); err != nil {
			return err
		}
		r.rawScene.Spheres = append(r.rawScene.Spheres, sphere)
	}
	return nil
}

// Parse a planes entry: planes((point, normal, material), ...)
func (r *textSceneReader) parsePlanes(args string) error {
	for _, group := range splitArgs(args) {
		inner, err := stripParens(group)
		if err != nil {
			return err
		}
		parts := splitArgs(inner)
		if len(parts) != 3 {
			return fmt.Errorf(`unsupported syntax for "planes" entry; expected (point, normal, material); got %d arguments`, len(parts))
		}

		var plane input.Plane
		if plane.Point, err = parseVec3Arg(parts[0]); err != nil {
			return err
		}
		if plane.Normal, err = parseVec3Arg(parts[1]); err != nil {
			return err
		}
		if plane.MaterialIndex, err = r.parseMaterial(parts[2]); err != nil {
			return err
		}
		r.rawScene.Planes = append(r.rawScene.Planes, plane)
	}
	return nil
}

// Parse a triangles entry: triangles((v0, v1, v2, material), ...)
func (r *textSceneReader) parseTriangles(args string) error {
	for _, group := range splitArgs(args) {
		inner, err := stripParens(group)
		if err != nil {
			return err
		}
		parts := splitArgs(inner)
		if len(parts) != 4 {
			return fmt.Errorf(`unsupported syntax for "triangles" entry; expected (v0, v1, v2, material); got %d arguments`, len(parts))
		}

		var tri input.Triangle
		for i := 0; i < 3; i++ {
			if tri.Vertices[i], err = parseVec3Arg(parts[i]); err != nil {
				return err
			}
		}
		if tri.MaterialIndex, err = r.parseMaterial(parts[3]); err != nil {
			return err
		}
		r.rawScene.Triangles = append(r.rawScene.Triangles, tri)
	}
	return nil
}

// Parse an obj entry: obj((path), (path, material), ...). Each group
// merges the referenced mesh into the scene triangle list; meshes
// without an explicit material get a neutral lambertian one.
func (r *textSceneReader) parseObjRefs(args string, res *asset.Resource, lineNum int) error {
	for _, group := range splitArgs(args) {
		inner, err := stripParens(group)
		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
		parts := splitArgs(inner)

		var matIndex int
		switch len(parts) {
		case 1:
			matIndex = r.registerMaterial(defaultObjMaterial())
		case 2:
			if matIndex, err = r.parseMaterial(parts[1]); err != nil {
				return r.emitError(res.Path(), lineNum, "%s", err.Error())
			}
		default:
			return r.emitError(res.Path(), lineNum, `unsupported syntax for "obj" entry; expected (path) or (path, material); got %d arguments`, len(parts))
		}

		r.pushFrame(fmt.Sprintf("referenced from %s:%d [obj]", res.Path(), lineNum))

		objRes, err := asset.NewResource(parts[0], res)
		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}

		wf := newWavefrontReader()
		wf.errStack = r.errStack
		triangles, err := wf.parseMesh(objRes)
		objRes.Close()
		if err != nil {
			return err
		}
		r.popFrame()

		if len(triangles) == 0 {
			r.logger.Warningf(`mesh "%s" contains no polygons`, objRes.Path())
		}
		for _, tri := range triangles {
			tri.MaterialIndex = matIndex
			r.rawScene.Triangles = append(r.rawScene.Triangles, tri)
		}
	}
	return nil
}

// Parse a material term and register it with the material set. Equal
// definitions share a single material index.
func (r *textSceneReader) parseMaterial(term string) (int, error) {
	name, args, err := splitEntry(strings.TrimSpace(term))
	if err != nil {
		return 0, fmt.Errorf("could not parse material: %s", err.Error())
	}
	parts := splitArgs(args)

	var mat input.Material
	switch name {
	case "lambertian":
		mat, err = parseLambertianTerm(parts)
	case "metal":
		mat, err = parseMetalTerm(parts)
	case "glass":
		mat, err = parseGlassTerm(parts)
	case "light":
		mat, err = parseLightTerm(parts)
	default:
		return 0, fmt.Errorf(`unknown material "%s"`, name)
	}
	if err != nil {
		return 0, err
	}

	return r.registerMaterial(mat), nil
}

// Register a material definition, reusing the index of an identical one.
func (r *textSceneReader) registerMaterial(mat input.Material) int {
	if index, exists := r.matToIndex[mat]; exists {
		return index
	}

	r.rawScene.Materials = append(r.rawScene.Materials, mat)
	index := len(r.rawScene.Materials) - 1
	r.matToIndex[mat] = index
	return index
}

// Parse lambertian(r g b) or lambertian(path[, nearest|bilinear]).
func parseLambertianTerm(parts []string) (input.Material, error) {
	mat := input.Material{Type: scene.LambertianMaterial}

	switch len(parts) {
	case 1:
		if albedo, err := parseVec3Arg(parts[0]); err == nil {
			mat.Albedo = albedo
			return mat, nil
		}
		mat.TexturePath = parts[0]
		mat.TextureFilter = scene.BilinearFilter
		return mat, nil
	case 2:
		mat.TexturePath = parts[0]
		switch parts[1] {
		case "nearest":
			mat.TextureFilter = scene.NearestFilter
		case "bilinear":
			mat.TextureFilter = scene.BilinearFilter
		default:
			return mat, fmt.Errorf(`unknown texture filter "%s"`, parts[1])
		}
		return mat, nil
	default:
		return mat, fmt.Errorf(`unsupported syntax for "lambertian"; expected a color or a texture path; got %d arguments`, len(parts))
	}
}

// Parse metal(r g b, fuzz).
func parseMetalTerm(parts []string) (input.Material, error) {
	mat := input.Material{Type: scene.MetalMaterial}
	if len(parts) != 2 {
		return mat, fmt.Errorf(`unsupported syntax for "metal"; expected (color, fuzz); got %d arguments`, len(parts))
	}

	var err error
	if mat.Albedo, err = parseVec3Arg(parts[0]); err != nil {
		return mat, err
	}
	if mat.Fuzz, err = parseFloatArg(parts[1]); err != nil {
		return mat, err
	}
	return mat, nil
}

// Parse glass(index).
func parseGlassTerm(parts []string) (input.Material, error) {
	mat := input.Material{Type: scene.GlassMaterial}
	if len(parts) != 1 {
		return mat, fmt.Errorf(`unsupported syntax for "glass"; expected a refractive index; got %d arguments`, len(parts))
	}

	var err error
	if mat.IOR, err = parseFloatArg(parts[0]); err != nil {
		return mat, err
	}
	return mat, nil
}

// Parse light(r g b).
func parseLightTerm(parts []string) (input.Material, error) {
	mat := input.Material{Type: scene.LightMaterial}
	if len(parts) != 1 {
		return mat, fmt.Errorf(`unsupported syntax for "light"; expected a color; got %d arguments`, len(parts))
	}

	var err error
	if mat.Albedo, err = parseVec3Arg(parts[0]); err != nil {
		return mat, err
	}
	return mat, nil
}

// The material assigned to obj meshes without an explicit one.
func defaultObjMaterial() input.Material {
	return input.Material{
		Type:   scene.LambertianMaterial,
		Albedo: types.XYZ(0.5, 0.5, 0.5),
	}
}
