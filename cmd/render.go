package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/achilleasa/lumen/asset/compiler"
	"github.com/achilleasa/lumen/asset/reader"
	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a scene into a progressive film file.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)

	scenePath := ctx.String("scene")
	if scenePath == "" {
		return errors.New("missing scene file argument")
	}

	mode, err := parseTraceMode(ctx.String("mode"))
	if err != nil {
		return err
	}

	parsedScene, err := reader.ReadScene(scenePath)
	if err != nil {
		return err
	}

	compiledScene, err := compiler.Compile(parsedScene)
	if err != nil {
		return err
	}

	filmPath := ctx.String("film")
	var target *film.Film
	if ctx.Bool("resume") {
		target, err = film.OpenOrCreate(filmPath, compiledScene.Screen.Width, compiledScene.Screen.Height)
	} else {
		target, err = film.Create(filmPath, compiledScene.Screen.Width, compiledScene.Screen.Height)
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("film %q already exists; pass --resume to continue accumulating samples into it", filmPath)
		}
	}
	if err != nil {
		return err
	}
	defer target.Close()

	r, err := renderer.New(compiledScene, renderer.Options{
		Film:             target,
		SamplesPerPixel:  ctx.Int("spp"),
		PassSamples:      ctx.Int("pass-samples"),
		MaxBounces:       ctx.Int("bounces"),
		MinRouletteDepth: ctx.Int("roulette"),
		TileSize:         ctx.Int("tile"),
		Workers:          ctx.Int("workers"),
		Seed:             ctx.Uint64("seed"),
		Mode:             mode,
		PinWorkers:       ctx.Bool("pin"),
	})
	if err != nil {
		return err
	}

	// An interrupt stops the render between tiles; the film stays resumable.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			r.Stop()
		}
	}()

	start := time.Now()
	stats, err := r.Render()
	if err != nil {
		return err
	}

	if stats.Stopped {
		logger.Noticef("render interrupted after %d completed pass(es); pass --resume to continue it", stats.Passes)
	} else {
		logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1e6)
	}
	displayFrameStats(stats)

	if outPath := ctx.String("out"); outPath != "" {
		return film.Export(target, outPath)
	}
	return nil
}

func parseTraceMode(mode string) (tracer.Mode, error) {
	switch mode {
	case "", "pt":
		return tracer.PathTracing, nil
	case "ao":
		return tracer.AmbientOcclusion, nil
	}
	return 0, fmt.Errorf("unsupported trace mode %q; supported modes: pt, ao", mode)
}

func displayFrameStats(stats *renderer.FrameStats) {
	var totalSamples uint64
	for _, stat := range stats.Workers {
		totalSamples += stat.Samples
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Tiles", "Samples", "% of samples", "Trace time"})
	for _, stat := range stats.Workers {
		var percent float64
		if totalSamples > 0 {
			percent = 100 * float64(stat.Samples) / float64(totalSamples)
		}
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.Tiles),
			fmt.Sprintf("%d", stat.Samples),
			fmt.Sprintf("%02.1f %%", percent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
