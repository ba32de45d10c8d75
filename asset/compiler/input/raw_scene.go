package input

import (
	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// A scene material as parsed, before textures are loaded and duplicate
// definitions merged.
type Material struct {
	Type scene.MaterialType

	// Albedo color for lambertian, metal and light materials.
	Albedo types.Vec3

	// Albedo texture path for lambertian materials; empty when the
	// albedo color is used instead.
	TexturePath   string
	TextureFilter scene.TextureFilter

	// Reflection fuzziness for metal materials.
	Fuzz float32

	// Refractive index for glass materials.
	IOR float32
}

// Screen geometry and render quality settings.
type Screen struct {
	TopLeft  types.Vec3
	TopEdge  types.Vec3
	LeftEdge types.Vec3

	Width   int
	Height  int
	Samples int
	Bounces int
}

// Camera settings.
type Camera struct {
	Eye types.Vec3
}

// A sphere primitive.
type Sphere struct {
	Center        types.Vec3
	Radius        float32
	MaterialIndex int
}

// An infinite plane primitive.
type Plane struct {
	Point         types.Vec3
	Normal        types.Vec3
	MaterialIndex int
}

// A triangle primitive. Normals are optional per-vertex shading
// normals; when HasNormals is false the geometric normal is used.
type Triangle struct {
	Vertices      [3]types.Vec3
	Normals       [3]types.Vec3
	HasNormals    bool
	MaterialIndex int
}

// The scene contains all elements that are validated and optimized by
// the scene compiler.
type Scene struct {
	Screen Screen
	Camera Camera

	BackgroundBottom types.Vec3
	BackgroundTop    types.Vec3

	Spheres   []Sphere
	Planes    []Plane
	Triangles []Triangle
	Materials []Material

	// Resource the scene was parsed from. Texture paths are resolved
	// relative to it when the compiler loads material textures.
	AssetRelPath *asset.Resource
}

// Create a new scene with the default background gradient.
func NewScene() *Scene {
	return &Scene{
		BackgroundBottom: scene.DefaultBackgroundBottom,
		BackgroundTop:    scene.DefaultBackgroundTop,
	}
}

// Total number of primitives in the scene.
func (s *Scene) PrimitiveCount() int {
	return len(s.Spheres) + len(s.Planes) + len(s.Triangles)
}
