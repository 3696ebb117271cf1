package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/turainai/gex"
	"github.com/turainai/gex/tile"
	"github.com/urfave/cli/v2"
)

const defaultDB = "gex.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "gex"
	app.Usage = "GeoTIFF extraction and tiling utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "input-dir",
			Usage:    "directory containing GeoTIFF files",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "output-dir",
			Usage:    "directory to save the output tiles",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "tile-size",
			Value: 256,
			Usage: "pixel width/height of extracted tiles",
		},
		&cli.BoolFlag{
			Name:  "no-alpha",
			Value: true,
			Usage: "discard tiles containing any transparent pixels",
		},
		&cli.BoolFlag{
			Name:  "skip-tif",
			Usage: "skip GeoTIFF conversion and tile existing PNGs",
		},
		&cli.BoolFlag{
			Name:  "quantize",
			Usage: "reduce tiles to a 256 color palette",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"GEX_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to tile manifest database",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "abort processing after this duration",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		db, err := gex.NewTileDB(c.String("db"))
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()

		g := gex.New(db, logger)

		ctx := context.Background()
		if timeout := c.Duration("timeout"); timeout > 0 {
			var cancelFunc context.CancelFunc
			ctx, cancelFunc = context.WithTimeout(ctx, timeout)
			defer cancelFunc()
		}

		cfg := tile.Config{
			Size:       c.Int("tile-size"),
			AllowAlpha: !c.Bool("no-alpha"),
			Quantize:   c.Bool("quantize"),
		}

		summary, err := g.Run(ctx, c.String("input-dir"), c.String("output-dir"), cfg, c.Bool("skip-tif"))
		if err != nil {
			return cli.Exit(err, 1)
		}

		fmt.Printf("%d raster(s) processed, %d failed\n", summary.RastersProcessed, summary.RastersFailed)
		fmt.Printf("%d tile(s) written at %dx%d, %d skipped, %d failed\n", summary.TilesWritten, cfg.Size, cfg.Size, summary.TilesSkipped, summary.TilesFailed)
		for _, f := range summary.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Source, f.Err)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
