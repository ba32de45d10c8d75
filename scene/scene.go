package scene

import "github.com/achilleasa/lumen/types"

// Default background gradient colors.
var (
	DefaultBackgroundBottom = types.XYZ(0.2, 0.2, 0.8)
	DefaultBackgroundTop    = types.XYZ(1, 1, 1)
)

// Screen holds the output resolution and the default sampling parameters
// declared by a scene.
type Screen struct {
	Width  int
	Height int

	SamplesPerPixel int
	MaxBounces      int
}

// A compiled scene. All slices are immutable once compilation completes;
// the per-type primitive arrays are ordered so that BVH leaves cover
// contiguous index ranges, and every material/normal reference has been
// validated.
type Scene struct {
	Screen Screen
	Camera *Camera

	Spheres       []Sphere
	Planes        []Plane
	Triangles     []Triangle
	VertexNormals []VertexNormals

	Materials []Material

	SphereBvh   []BvhNode
	PlaneBvh    []BvhNode
	TriangleBvh []BvhNode

	// Background gradient colors at the bottom (dir y = -1) and top
	// (dir y = +1) of the sky.
	BackgroundBottom types.Vec3
	BackgroundTop    types.Vec3
}

// Background returns the radiance of a ray that leaves the scene.
func (s *Scene) Background(dir types.Vec3) types.Vec3 {
	a := 0.5 * (dir[1] + 1.0)
	return s.BackgroundBottom.Mul(1 - a).Add(s.BackgroundTop.Mul(a))
}

// Total number of primitives across all shape types.
func (s *Scene) PrimitiveCount() int {
	return len(s.Spheres) + len(s.Planes) + len(s.Triangles)
}

// Total number of BVH nodes across all shape types.
func (s *Scene) BvhNodeCount() int {
	return len(s.SphereBvh) + len(s.PlaneBvh) + len(s.TriangleBvh)
}
