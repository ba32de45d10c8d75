// Package renderer schedules a pool of CPU tracer workers over the
// tiles of a frame and accumulates their samples into a film.
package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
)

const defaultTileSize = 32

type Renderer struct {
	target *scene.Scene
	film   *film.Film
	opts   Options
	logger log.Logger

	rendering uint32
	stop      uint32
}

// New validates the scene and film pair and creates a renderer with the
// option defaults filled in.
func New(target *scene.Scene, opts Options) (*Renderer, error) {
	if target == nil {
		return nil, ErrSceneNotDefined
	}
	if target.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.Film == nil {
		return nil, ErrFilmNotDefined
	}
	if opts.Film.Width() != target.Screen.Width || opts.Film.Height() != target.Screen.Height {
		return nil, fmt.Errorf("%w: film is %d x %d, screen is %d x %d", ErrFilmMismatch,
			opts.Film.Width(), opts.Film.Height(), target.Screen.Width, target.Screen.Height)
	}

	if opts.SamplesPerPixel <= 0 {
		opts.SamplesPerPixel = target.Screen.SamplesPerPixel
	}
	if opts.SamplesPerPixel <= 0 {
		opts.SamplesPerPixel = 1
	}
	if opts.PassSamples <= 0 {
		opts.PassSamples = 1
	}
	if opts.TileSize <= 0 {
		opts.TileSize = defaultTileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Seed == 0 {
		opts.Seed = tracer.DefaultSeed
	}

	return &Renderer{
		target: target,
		film:   opts.Film,
		opts:   opts,
		logger: log.New("renderer"),
	}, nil
}

// Stop interrupts the render after the tiles currently being traced
// complete. The film stays valid and the render can be resumed later.
func (r *Renderer) Stop() {
	if atomic.CompareAndSwapUint32(&r.stop, 0, 1) {
		r.logger.Notice("stop requested; waiting for in-flight tiles")
	}
}

func (r *Renderer) stopRequested() bool {
	return atomic.LoadUint32(&r.stop) == 1
}

// Render runs passes over the frame until every pixel reaches the
// per-pixel sample target or Stop is called. Samples accumulate on top
// of whatever the film already holds, so rendering against a partially
// filled film resumes it.
func (r *Renderer) Render() (*FrameStats, error) {
	if !atomic.CompareAndSwapUint32(&r.rendering, 0, 1) {
		return nil, ErrAlreadyRendering
	}
	defer atomic.StoreUint32(&r.rendering, 0)

	start := time.Now()
	tiles := splitTiles(r.target.Screen.Width, r.target.Screen.Height, r.opts.TileSize)
	stats := &FrameStats{Workers: make([]WorkerStat, r.opts.Workers)}
	for i := range stats.Workers {
		stats.Workers[i].Id = i
	}

	r.logger.Noticef("rendering %d x %d frame: %d samples/pixel, %d workers, %d tiles of %d px",
		r.target.Screen.Width, r.target.Screen.Height, r.opts.SamplesPerPixel,
		r.opts.Workers, len(tiles), r.opts.TileSize)

	for pass := 1; ; pass++ {
		if r.stopRequested() {
			stats.Stopped = true
			break
		}
		pending := r.pendingSamples()
		if pending == 0 {
			break
		}
		scheduled := r.opts.PassSamples
		if scheduled > pending {
			scheduled = pending
		}

		passStart := time.Now()
		added := r.renderPass(tiles, stats.Workers)
		r.film.AddPass(uint32(scheduled))
		if err := r.film.Sync(); err != nil {
			r.logger.Warningf("%s", err)
		}
		stats.Passes++
		stats.Samples += scheduled
		r.logger.Infof("pass %d: %d sample(s)/pixel in %d ms", pass, scheduled, time.Since(passStart).Nanoseconds()/1e6)

		if added == 0 && !r.stopRequested() {
			r.logger.Warning("pass accumulated no samples; aborting render (all generated rays are degenerate)")
			break
		}
	}

	stats.RenderTime = time.Since(start)
	return stats, nil
}

// pendingSamples returns how many samples the least sampled pixel still
// needs. Progress is always read back from the film so a resumed render
// picks up exactly where the previous one stopped.
func (r *Renderer) pendingSamples() int {
	min := ^uint32(0)
	for y := 0; y < r.target.Screen.Height; y++ {
		for x := 0; x < r.target.Screen.Width; x++ {
			if c := r.film.SampleCount(x, y); c < min {
				min = c
			}
		}
	}
	if int(min) >= r.opts.SamplesPerPixel {
		return 0
	}
	return r.opts.SamplesPerPixel - int(min)
}

// renderPass pushes every tile through the worker pool once and returns
// the number of samples accumulated into the film.
func (r *Renderer) renderPass(tiles []tile, workerStats []WorkerStat) uint64 {
	tileCh := make(chan tile, len(tiles))
	for _, t := range tiles {
		tileCh <- t
	}
	close(tileCh)

	var accumulated uint64
	var wg sync.WaitGroup
	wg.Add(len(workerStats))
	for i := range workerStats {
		go func(ws *WorkerStat) {
			defer wg.Done()
			if r.opts.PinWorkers {
				runtime.LockOSThread()
				if err := pinThread(ws.Id % runtime.NumCPU()); err != nil {
					r.logger.Warningf("could not pin worker %d: %s", ws.Id, err)
				}
			}

			tr := tracer.New(r.target, tracer.Config{
				MaxBounces:       r.opts.MaxBounces,
				MinRouletteDepth: r.opts.MinRouletteDepth,
				Mode:             r.opts.Mode,
			})
			for t := range tileCh {
				// Stop applies between tiles; the rest of the pass is
				// drained so the pool can shut down.
				if r.stopRequested() {
					continue
				}
				tileStart := time.Now()
				added := r.renderTile(tr, t)
				ws.Tiles++
				ws.Samples += added
				ws.RenderTime += time.Since(tileStart)
				atomic.AddUint64(&accumulated, added)
			}
		}(&workerStats[i])
	}
	wg.Wait()

	return accumulated
}

func (r *Renderer) renderTile(tr *tracer.Tracer, t tile) uint64 {
	var added uint64
	target := uint32(r.opts.SamplesPerPixel)
	for y := t.y0; y < t.y1; y++ {
		for x := t.x0; x < t.x1; x++ {
			count := r.film.SampleCount(x, y)
			if count >= target {
				continue
			}
			n := uint32(r.opts.PassSamples)
			if count+n > target {
				n = target - count
			}

			// A pixel's next sample index is its stored count. On a
			// discarded sample the pixel is abandoned for this pass:
			// accumulated indices must stay a contiguous prefix of the
			// stream or a resume would replay samples.
			for s := uint32(0); s < n; s++ {
				color, ok := tr.SamplePixel(r.opts.Seed, x, y, int(count+s))
				if !ok {
					break
				}
				r.film.AddSample(x, y, color)
				added++
			}
		}
	}
	return added
}
