package main

import (
	"os"

	"github.com/achilleasa/lumen/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "render scenes using progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene into a progressive film",
			Description: `
Parse a text scene description, build per-shape BVH trees to optimize ray
intersection tests and trace the scene with a pool of CPU workers.

Samples accumulate into a memory-mapped film file. The film can be previewed
while the render runs and an interrupted render can be resumed by passing
the --resume flag.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "scene file to render",
				},
				cli.StringFlag{
					Name:  "film, f",
					Value: "frame.lum",
					Usage: "film file receiving the accumulated samples",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "per-pixel sample target; 0 uses the scene setting",
				},
				cli.IntFlag{
					Name:  "pass-samples",
					Value: 1,
					Usage: "samples added to each pixel per pass",
				},
				cli.IntFlag{
					Name:  "bounces",
					Usage: "max path bounces; 0 uses the scene setting",
				},
				cli.IntFlag{
					Name:  "roulette",
					Usage: "min bounces before russian roulette path elimination; 0 disables it",
				},
				cli.IntFlag{
					Name:  "tile",
					Value: 32,
					Usage: "tile edge length in pixels",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "number of render workers; 0 uses all CPUs",
				},
				cli.Uint64Flag{
					Name:  "seed",
					Usage: "base seed for the per-sample RNG streams",
				},
				cli.StringFlag{
					Name:  "mode",
					Value: "pt",
					Usage: "trace mode: pt (path tracing) or ao (ambient occlusion)",
				},
				cli.BoolFlag{
					Name:  "pin",
					Usage: "pin render workers to CPU cores",
				},
				cli.BoolFlag{
					Name:  "resume",
					Usage: "continue accumulating samples into an existing film",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "also export the frame to this image file when the render completes",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:  "export",
			Usage: "export an accumulated film to a ppm, png or webp image",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "film, f",
					Value: "frame.lum",
					Usage: "film file to export",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the exported frame",
				},
			},
			Action: cmd.ExportFilm,
		},
		{
			Name:  "preview",
			Usage: "serve a live html view of a film",
			Description: `
Serve an auto-refreshing view of a film over http. The film may belong to a
concurrent render; the preview always observes consistent pixel values.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "film, f",
					Value: "frame.lum",
					Usage: "film file to preview",
				},
				cli.StringFlag{
					Name:  "listen",
					Value: "127.0.0.1:8080",
					Usage: "address to serve the preview on",
				},
				cli.IntFlag{
					Name:  "refresh",
					Value: 1000,
					Usage: "frame refresh interval in ms",
				},
			},
			Action: cmd.PreviewFilm,
		},
		{
			Name:  "info",
			Usage: "display film and compiled scene information",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "film, f",
					Usage: "film file to inspect",
				},
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "scene file to compile and inspect",
				},
			},
			Action: cmd.ShowInfo,
		},
	}

	app.Run(os.Args)
}
