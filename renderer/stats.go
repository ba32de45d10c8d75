package renderer

import "time"

type WorkerStat struct {
	// The worker id.
	Id int

	// Number of tiles rendered by this worker.
	Tiles int

	// Number of samples this worker accumulated into the film.
	Samples uint64

	// Time spent tracing tiles.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Passes completed and per-pixel samples scheduled by this render
	// call.
	Passes  int
	Samples int

	// True when the render was interrupted before reaching the sample
	// target.
	Stopped bool

	// Total wall clock time for the render call.
	RenderTime time.Duration
}
