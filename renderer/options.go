package renderer

import (
	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/tracer"
)

type Options struct {
	// The film samples are accumulated into. Required.
	Film *film.Film

	// Per-pixel sample target. Zero falls back to the scene screen
	// declaration.
	SamplesPerPixel int

	// Samples added to each pixel by a single pass.
	PassSamples int

	// Max number of path bounces. Zero falls back to the scene screen
	// declaration.
	MaxBounces int

	// Min bounces before russian roulette path elimination kicks in.
	// Zero disables roulette.
	MinRouletteDepth int

	// Square tile edge in pixels.
	TileSize int

	// Number of render workers. Zero uses one worker per CPU.
	Workers int

	// Base seed for the per-sample RNG streams.
	Seed uint64

	// Integrator selection (path tracing or ambient occlusion).
	Mode tracer.Mode

	// Pin each worker to a CPU core (linux only).
	PinWorkers bool
}
