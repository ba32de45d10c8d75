package tracer

import (
	"math"
	"math/bits"
)

// wyrand multiplier constants.
const (
	wyConst0 = 0x2d358dccaa6c78a5
	wyConst1 = 0x8bb84b93962eacc9
)

// Seed used when the caller does not provide one.
const DefaultSeed uint64 = 0xef6f79ed30ba75a

// A wyrand pseudo random generator. Generators are cheap value types;
// render workers derive a fresh one per pixel sample via NewSampleRand.
type Rand struct {
	state uint64
}

// NewRand creates a generator seeded with the given value.
func NewRand(seed uint64) Rand {
	return Rand{state: seed}
}

// NewSampleRand derives the generator for a single pixel sample. The
// resulting stream is a pure function of (seed, x, y, sampleIndex) so
// samples produce identical values no matter which worker traces them
// or in which order tiles are scheduled.
func NewSampleRand(seed uint64, x, y, sampleIndex int) Rand {
	state := mix(seed ^ (uint64(uint32(x)) | uint64(uint32(y))<<32))
	return Rand{state: mix(state ^ uint64(uint32(sampleIndex)))}
}

// Uint64 advances the generator and returns the next value.
func (r *Rand) Uint64() uint64 {
	r.state += wyConst0
	hi, lo := bits.Mul64(r.state, r.state^wyConst1)
	return hi ^ lo
}

// Uint32 returns the low word of the next value.
func (r *Rand) Uint32() uint32 {
	return uint32(r.Uint64())
}

// Float32 returns a uniformly distributed value in [0, 1). The top 23
// random bits fill the mantissa of a float in [1, 2) which is then
// shifted down.
func (r *Rand) Float32() float32 {
	return math.Float32frombits(1<<30-1<<23+r.Uint32()>>9) - 1
}

func mix(v uint64) uint64 {
	hi, lo := bits.Mul64(v+wyConst0, v^wyConst1)
	return hi ^ lo
}
