package tracer

import (
	"math"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// The shading mode applied to primary rays.
type Mode uint8

const (
	// Full path tracing.
	PathTracing Mode = iota

	// Ambient occlusion shading for inspecting scene geometry.
	AmbientOcclusion
)

// Scattered and occlusion rays start this far from the originating
// surface so they cannot re-intersect it.
const minHitDistance = 0.001

// Number of occlusion probes per ambient occlusion sample.
const aoProbes = 8

// Config tunes a Tracer.
type Config struct {
	// Maximum path depth; values below one fall back to the scene
	// screen setting.
	MaxBounces int

	// Bounce count after which Russian roulette termination kicks in.
	// Zero disables roulette and paths always run to full depth.
	MinRouletteDepth int

	// Shading mode for primary rays.
	Mode Mode
}

// A Tracer samples pixel radiance for a single render worker. It owns
// mutable per-worker state (the random generator and the BVH traversal
// stack) and must not be shared between goroutines; workers tracing the
// same scene each hold their own Tracer.
type Tracer struct {
	scene *scene.Scene
	cfg   Config

	rand  Rand
	stack []stackEntry
}

// New creates a tracer for a compiled scene.
func New(target *scene.Scene, cfg Config) *Tracer {
	if cfg.MaxBounces < 1 {
		cfg.MaxBounces = target.Screen.MaxBounces
	}
	return &Tracer{
		scene: target,
		cfg:   cfg,
		stack: make([]stackEntry, 0, 64),
	}
}

// SamplePixel traces one sample of pixel (x, y) and returns its linear
// radiance. The underlying random stream depends only on (seed, x, y,
// sampleIndex) so any worker can trace any sample in any order and
// produce the same value. ok is false when the sample hit a degenerate
// ray and must be discarded instead of accumulated.
func (t *Tracer) SamplePixel(seed uint64, x, y, sampleIndex int) (color types.Vec3, ok bool) {
	t.rand = NewSampleRand(seed, x, y, sampleIndex)

	jx := 0.5 * t.rand.Float32()
	jy := 0.5 * t.rand.Float32()
	u := (float32(x) + jx) / float32(t.scene.Screen.Width-1)
	v := (float32(y) + jy) / float32(t.scene.Screen.Height-1)

	origin, dir := t.scene.Camera.Ray(u, v)
	r := NewRay(origin, dir)
	if !r.Valid() {
		return types.Vec3{}, false
	}

	if t.cfg.Mode == AmbientOcclusion {
		return t.traceOcclusion(r), true
	}
	return t.traceRadiance(r)
}

// traceRadiance evaluates the path integral for a primary ray with an
// iterative bounce loop carrying the path throughput. Paths end on a
// scene miss (background radiance), an emissive hit, absorption or
// depth exhaustion.
func (t *Tracer) traceRadiance(r Ray) (types.Vec3, bool) {
	throughput := types.XYZ(1, 1, 1)

	for depth := 0; depth < t.cfg.MaxBounces; depth++ {
		var hit Hit
		if !t.nearestHit(r, minHitDistance, &hit) {
			return throughput.MulVec(t.scene.Background(r.Dir)), true
		}

		res := t.scatter(r, &hit)
		switch res.kind {
		case emitted:
			return throughput.MulVec(res.color), true
		case absorbed:
			return types.Vec3{}, true
		}

		throughput = throughput.MulVec(res.color)
		r = res.ray
		if !r.Valid() {
			return types.Vec3{}, false
		}

		if t.cfg.MinRouletteDepth > 0 && depth >= t.cfg.MinRouletteDepth {
			p := throughput.MaxComponent()
			if p < 0.05 {
				p = 0.05
			} else if p > 0.95 {
				p = 0.95
			}
			if t.rand.Float32() >= p {
				return types.Vec3{}, true
			}
			throughput = throughput.Mul(1 / p)
		}
	}

	return types.Vec3{}, true
}

// traceOcclusion shades the primary hit with the fraction of cosine
// distributed probes that escape the scene; primary misses render
// white.
func (t *Tracer) traceOcclusion(r Ray) types.Vec3 {
	var hit Hit
	if !t.nearestHit(r, minHitDistance, &hit) {
		return types.XYZ(1, 1, 1)
	}

	free := 0
	for i := 0; i < aoProbes; i++ {
		probe := NewRay(hit.Point, cosineHemisphere(&t.rand, hit.Normal))
		if !t.anyHit(probe, minHitDistance, math.MaxFloat32) {
			free++
		}
	}

	f := float32(free) / aoProbes
	return types.XYZ(f, f, f)
}
