package cmd

import (
	"errors"
	"time"

	"github.com/achilleasa/lumen/film"
	"github.com/urfave/cli"
)

// Export an accumulated film to an image file.
func ExportFilm(ctx *cli.Context) error {
	setupLogging(ctx)

	outPath := ctx.String("out")
	if outPath == "" {
		return errors.New("missing output file argument")
	}

	target, err := film.Open(ctx.String("film"))
	if err != nil {
		return err
	}
	defer target.Close()

	start := time.Now()
	if err = film.Export(target, outPath); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", outPath, time.Since(start).Nanoseconds()/1e6)

	return nil
}
