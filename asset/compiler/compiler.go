package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/asset/compiler/bvh"
	"github.com/achilleasa/lumen/asset/compiler/input"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// Ranges of this many primitives or fewer always become BVH leafs.
const maxPrimitivesPerLeaf = 4

type textureCacheKey struct {
	path   string
	filter scene.TextureFilter
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger

	// A map of texture path/filter pairs to their loaded textures. This
	// cache allows us to re-use already loaded textures when referenced
	// by multiple materials.
	texCache map[textureCacheKey]*scene.Texture

	// Maps parsed material indices to deduplicated scene material indices.
	matIndexMap []uint32
}

// Compile a scene representation parsed by a scene reader into the
// optimized representation used by the tracer.
func Compile(parsedScene *input.Scene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene:    parsedScene,
		optimizedScene: &scene.Scene{},
		logger:         log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	if err = compiler.processMaterials(); err != nil {
		return nil, err
	}
	if err = compiler.processGeometry(); err != nil {
		return nil, err
	}
	if err = compiler.setupCamera(); err != nil {
		return nil, err
	}
	if err = compiler.partitionGeometry(); err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Convert parsed materials into scene materials, loading any referenced
// textures. Definitions that are equal after clamping share a single
// scene material.
func (sc *sceneCompiler) processMaterials() error {
	start := time.Now()
	sc.logger.Noticef("processing %d materials", len(sc.parsedScene.Materials))

	sc.texCache = make(map[textureCacheKey]*scene.Texture, 0)
	sc.matIndexMap = make([]uint32, len(sc.parsedScene.Materials))

	for matIndex, parsedMat := range sc.parsedScene.Materials {
		var mat scene.Material
		switch parsedMat.Type {
		case scene.LambertianMaterial:
			if parsedMat.TexturePath != "" {
				tex, err := sc.loadTexture(parsedMat.TexturePath, parsedMat.TextureFilter)
				if err != nil {
					return err
				}
				mat = scene.NewTexturedLambertian(tex)
			} else {
				mat = scene.NewLambertian(parsedMat.Albedo)
			}
		case scene.MetalMaterial:
			mat = scene.NewMetal(parsedMat.Albedo, parsedMat.Fuzz)
		case scene.GlassMaterial:
			mat = scene.NewGlass(parsedMat.IOR)
		case scene.LightMaterial:
			mat = scene.NewLight(parsedMat.Albedo)
		default:
			return fmt.Errorf("compiler: unsupported material type %d", parsedMat.Type)
		}

		sc.matIndexMap[matIndex] = sc.addMaterial(mat)
	}

	sc.logger.Noticef("processed %d materials in %d ms", len(sc.parsedScene.Materials), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Append a material to the scene list, reusing the index of an equal
// existing one.
func (sc *sceneCompiler) addMaterial(mat scene.Material) uint32 {
	for index := range sc.optimizedScene.Materials {
		if sc.optimizedScene.Materials[index].Equals(mat) {
			return uint32(index)
		}
	}
	sc.optimizedScene.Materials = append(sc.optimizedScene.Materials, mat)
	return uint32(len(sc.optimizedScene.Materials) - 1)
}

// Load a material texture, re-using already loaded instances.
func (sc *sceneCompiler) loadTexture(texPath string, filter scene.TextureFilter) (*scene.Texture, error) {
	res, err := asset.NewResource(texPath, sc.parsedScene.AssetRelPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: could not open texture %q: %s", texPath, err.Error())
	}
	defer res.Close()

	key := textureCacheKey{path: res.Path(), filter: filter}
	if tex, exists := sc.texCache[key]; exists {
		sc.logger.Infof("re-using already loaded texture %q", texPath)
		return tex, nil
	}

	sc.logger.Infof("loading texture %q", texPath)
	tex, err := asset.LoadTexture(res, filter)
	if err != nil {
		return nil, fmt.Errorf("compiler: %s", err.Error())
	}

	sc.texCache[key] = tex
	return tex, nil
}

// Convert parsed geometry into the flat primitive arrays used by the
// tracer, remapping material references.
func (sc *sceneCompiler) processGeometry() error {
	start := time.Now()
	sc.logger.Noticef("processing %d primitives", sc.parsedScene.PrimitiveCount())

	matCount := len(sc.parsedScene.Materials)
	out := sc.optimizedScene

	out.Spheres = make([]scene.Sphere, len(sc.parsedScene.Spheres))
	for i, parsed := range sc.parsedScene.Spheres {
		if parsed.MaterialIndex < 0 || parsed.MaterialIndex >= matCount {
			return fmt.Errorf("compiler: sphere %d references unknown material %d", i, parsed.MaterialIndex)
		}
		out.Spheres[i] = scene.Sphere{
			Center:   parsed.Center,
			Radius:   parsed.Radius,
			Material: sc.matIndexMap[parsed.MaterialIndex],
		}
	}

	out.Planes = make([]scene.Plane, len(sc.parsedScene.Planes))
	for i, parsed := range sc.parsedScene.Planes {
		if parsed.MaterialIndex < 0 || parsed.MaterialIndex >= matCount {
			return fmt.Errorf("compiler: plane %d references unknown material %d", i, parsed.MaterialIndex)
		}
		// A zero-length normal stays zero and the plane never hits.
		out.Planes[i] = scene.Plane{
			Point:    parsed.Point,
			Normal:   parsed.Normal.Normalize(),
			Material: sc.matIndexMap[parsed.MaterialIndex],
		}
	}

	out.Triangles = make([]scene.Triangle, len(sc.parsedScene.Triangles))
	out.VertexNormals = make([]scene.VertexNormals, 0)
	for i, parsed := range sc.parsedScene.Triangles {
		if parsed.MaterialIndex < 0 || parsed.MaterialIndex >= matCount {
			return fmt.Errorf("compiler: triangle %d references unknown material %d", i, parsed.MaterialIndex)
		}

		normalsIndex := int32(scene.NoNormals)
		if parsed.HasNormals {
			out.VertexNormals = append(out.VertexNormals, scene.VertexNormals(parsed.Normals))
			normalsIndex = int32(len(out.VertexNormals) - 1)
		}
		out.Triangles[i] = scene.Triangle{
			V0:       parsed.Vertices[0],
			V1:       parsed.Vertices[1],
			V2:       parsed.Vertices[2],
			Normals:  normalsIndex,
			Material: sc.matIndexMap[parsed.MaterialIndex],
		}
	}

	out.BackgroundBottom = sc.parsedScene.BackgroundBottom
	out.BackgroundTop = sc.parsedScene.BackgroundTop

	if !sc.hasLightSource() {
		sc.logger.Warning("the scene contains no light materials and a black background; output will appear black!")
	}

	sc.logger.Noticef("processed %d primitives in %d ms", sc.parsedScene.PrimitiveCount(), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Returns true when at least one light material or a non-black
// background can contribute radiance.
func (sc *sceneCompiler) hasLightSource() bool {
	for _, mat := range sc.optimizedScene.Materials {
		if mat.Type == scene.LightMaterial {
			return true
		}
	}
	return sc.optimizedScene.BackgroundBottom.MaxComponent() > 0 ||
		sc.optimizedScene.BackgroundTop.MaxComponent() > 0
}

// Initialize the camera and viewport for the scene.
func (sc *sceneCompiler) setupCamera() error {
	screen := sc.parsedScene.Screen
	sc.optimizedScene.Screen = scene.Screen{
		Width:           screen.Width,
		Height:          screen.Height,
		SamplesPerPixel: screen.Samples,
		MaxBounces:      screen.Bounces,
	}
	sc.optimizedScene.Camera = scene.NewCamera(
		sc.parsedScene.Camera.Eye,
		screen.TopLeft,
		screen.TopEdge,
		screen.LeftEdge,
	)
	return nil
}

// Build one BVH per primitive type. Building reorders the primitive
// arrays in place so that leaves reference contiguous index ranges.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	out := sc.optimizedScene
	sc.logger.Infof("building BVH tree for %d spheres", len(out.Spheres))
	out.SphereBvh = bvh.Build(sphereSet(out.Spheres), maxPrimitivesPerLeaf)
	sc.logger.Infof("building BVH tree for %d planes", len(out.Planes))
	out.PlaneBvh = bvh.Build(planeSet(out.Planes), maxPrimitivesPerLeaf)
	sc.logger.Infof("building BVH tree for %d triangles", len(out.Triangles))
	out.TriangleBvh = bvh.Build(triangleSet(out.Triangles), maxPrimitivesPerLeaf)

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// BVH adapters over the scene primitive arrays.

type sphereSet []scene.Sphere

func (s sphereSet) Len() int                              { return len(s) }
func (s sphereSet) Bounds(i int) (types.Vec3, types.Vec3) { return s[i].Bounds() }
func (s sphereSet) Centroid(i int) types.Vec3             { return s[i].Centroid() }
func (s sphereSet) Swap(i, j int)                         { s[i], s[j] = s[j], s[i] }

type planeSet []scene.Plane

func (s planeSet) Len() int                              { return len(s) }
func (s planeSet) Bounds(i int) (types.Vec3, types.Vec3) { return s[i].Bounds() }
func (s planeSet) Centroid(i int) types.Vec3             { return s[i].Centroid() }
func (s planeSet) Swap(i, j int)                         { s[i], s[j] = s[j], s[i] }

type triangleSet []scene.Triangle

func (s triangleSet) Len() int                              { return len(s) }
func (s triangleSet) Bounds(i int) (types.Vec3, types.Vec3) { return s[i].Bounds() }
func (s triangleSet) Centroid(i int) types.Vec3             { return s[i].Centroid() }
func (s triangleSet) Swap(i, j int)                         { s[i], s[j] = s[j], s[i] }
