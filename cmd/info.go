package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/lumen/asset/compiler"
	"github.com/achilleasa/lumen/asset/reader"
	"github.com/achilleasa/lumen/film"
	"github.com/achilleasa/lumen/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Display information about a film file, a compiled scene or both.
func ShowInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	filmPath := ctx.String("film")
	scenePath := ctx.String("scene")
	if filmPath == "" && scenePath == "" {
		return errors.New("missing film or scene file argument")
	}

	if filmPath != "" {
		target, err := film.Open(filmPath)
		if err != nil {
			return err
		}
		displayFilmInfo(target)
		target.Close()
	}

	if scenePath != "" {
		parsedScene, err := reader.ReadScene(scenePath)
		if err != nil {
			return err
		}
		compiledScene, err := compiler.Compile(parsedScene)
		if err != nil {
			return err
		}
		displaySceneInfo(compiledScene)
	}

	return nil
}

func displayFilmInfo(target *film.Film) {
	samples := target.Samples()
	var pending uint64
	for y := 0; y < target.Height(); y++ {
		for x := 0; x < target.Width(); x++ {
			if count := target.SampleCount(x, y); count < samples {
				pending += uint64(samples - count)
			}
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Film", "Value"})
	table.Append([]string{"Path", target.Path()})
	table.Append([]string{"Dimensions", fmt.Sprintf("%d x %d", target.Width(), target.Height())})
	table.Append([]string{"Completed passes", fmt.Sprintf("%d", target.Passes())})
	table.Append([]string{"Samples per pixel", fmt.Sprintf("%d", samples)})
	table.Append([]string{"Pending samples", fmt.Sprintf("%d", pending)})

	table.Render()
	logger.Noticef("film information\n%s", buf.String())
}

func displaySceneInfo(compiledScene *scene.Scene) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Value"})
	table.Append([]string{"Resolution", fmt.Sprintf("%d x %d", compiledScene.Screen.Width, compiledScene.Screen.Height)})
	table.Append([]string{"Samples per pixel", fmt.Sprintf("%d", compiledScene.Screen.SamplesPerPixel)})
	table.Append([]string{"Max bounces", fmt.Sprintf("%d", compiledScene.Screen.MaxBounces)})
	table.Append([]string{"Materials", fmt.Sprintf("%d", len(compiledScene.Materials))})
	table.Append([]string{"Spheres", fmt.Sprintf("%d", len(compiledScene.Spheres))})
	table.Append([]string{"Planes", fmt.Sprintf("%d", len(compiledScene.Planes))})
	table.Append([]string{"Triangles", fmt.Sprintf("%d", len(compiledScene.Triangles))})
	table.Append([]string{"Vertex normal sets", fmt.Sprintf("%d", len(compiledScene.VertexNormals))})
	table.Append([]string{"BVH nodes", fmt.Sprintf("%d", compiledScene.BvhNodeCount())})

	table.Render()
	logger.Noticef("scene information\n%s", buf.String())
}
