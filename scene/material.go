package scene

import "github.com/achilleasa/lumen/types"

type MaterialType uint8

const (
	LambertianMaterial MaterialType = iota
	MetalMaterial
	GlassMaterial
	LightMaterial
)

func (t MaterialType) String() string {
	switch t {
	case LambertianMaterial:
		return "lambertian"
	case MetalMaterial:
		return "metal"
	case GlassMaterial:
		return "glass"
	case LightMaterial:
		return "light"
	}
	return "unknown"
}

// Defines a scene material.
type Material struct {
	// The type of the material.
	Type MaterialType

	// Albedo color. Doubles as the emitted color for light materials.
	Albedo types.Vec3

	// Optional albedo texture; overrides Albedo for lambertian materials.
	Texture *Texture

	// Reflection cone radius in [0, 1] (metal materials only).
	Fuzz float32

	// Index of refraction (glass materials only).
	IOR float32
}

// Create new lambertian material with a constant albedo.
func NewLambertian(albedo types.Vec3) Material {
	return Material{Type: LambertianMaterial, Albedo: albedo}
}

// Create new lambertian material with a textured albedo.
func NewTexturedLambertian(tex *Texture) Material {
	return Material{Type: LambertianMaterial, Albedo: types.XYZ(1, 1, 1), Texture: tex}
}

// Create new metal material.
func NewMetal(albedo types.Vec3, fuzz float32) Material {
	if fuzz < 0 {
		fuzz = 0
	} else if fuzz > 1 {
		fuzz = 1
	}
	return Material{Type: MetalMaterial, Albedo: albedo, Fuzz: fuzz}
}

// Create new glass material.
func NewGlass(ior float32) Material {
	return Material{Type: GlassMaterial, Albedo: types.XYZ(1, 1, 1), IOR: ior}
}

// Create new light material.
func NewLight(emissive types.Vec3) Material {
	return Material{Type: LightMaterial, Albedo: emissive}
}

// Compare two materials for deduplication purposes. Textured materials
// are never considered equal unless they share the same texture instance.
func (m Material) Equals(other Material) bool {
	return m.Type == other.Type &&
		m.Albedo == other.Albedo &&
		m.Texture == other.Texture &&
		m.Fuzz == other.Fuzz &&
		m.IOR == other.IOR
}
