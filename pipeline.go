package gex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/turainai/gex/convert"
	"github.com/turainai/gex/raster"
	"github.com/turainai/gex/tile"
)

const rasterWorkers = 4

// Failure records a raster or tile that could not be processed, keyed
// by its source so the affected input can be located.
type Failure struct {
	Source string
	Err    error
}

// Summary accumulates the outcome of one pipeline run. Partial
// summaries merge associatively, so workers can aggregate per-raster
// results without shared counters.
type Summary struct {
	TilesWritten     int
	TilesSkipped     int
	TilesFailed      int
	RastersProcessed int
	RastersFailed    int
	Failures         []Failure
}

func (s *Summary) merge(o Summary) {
	s.TilesWritten += o.TilesWritten
	s.TilesSkipped += o.TilesSkipped
	s.TilesFailed += o.TilesFailed
	s.RastersProcessed += o.RastersProcessed
	s.RastersFailed += o.RastersFailed
	s.Failures = append(s.Failures, o.Failures...)
}

// Run executes the full extraction: the GeoTIFF conversion phase
// unless skipConvert is set, followed by tiling of the converted
// rasters into outputDir. With skipConvert every PNG in inputDir is
// treated as an already converted raster.
func (g *GEX) Run(ctx context.Context, inputDir, outputDir string, cfg tile.Config, skipConvert bool) (*Summary, error) {
	if skipConvert {
		g.logger.Println("Skipping GeoTIFF conversion")
		return g.Tile(ctx, inputDir, outputDir, cfg)
	}

	if err := g.Convert(ctx, inputDir); err != nil {
		return nil, err
	}

	return g.tile(ctx, inputDir, outputDir, cfg, func(name string) bool {
		return strings.HasSuffix(name, convert.ResizedSuffix+".png")
	})
}

// Tile cuts every PNG raster in inputDir into tiles in outputDir.
func (g *GEX) Tile(ctx context.Context, inputDir, outputDir string, cfg tile.Config) (*Summary, error) {
	return g.tile(ctx, inputDir, outputDir, cfg, func(name string) bool {
		return filepath.Ext(name) == ".png"
	})
}

func (g *GEX) tile(ctx context.Context, inputDir, outputDir string, cfg tile.Config, match func(string) bool) (*Summary, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: tile size %d", tile.ErrInvalidDimension, cfg.Size)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	paths, errc, err := g.findRasters(ctx, inputDir, match)
	if err != nil {
		return nil, err
	}

	results := make(chan Summary)

	var wg sync.WaitGroup
	for i := 0; i < rasterWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				results <- g.tileRaster(path, outputDir, cfg)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	summary := new(Summary)
	for s := range results {
		summary.merge(s)
	}

	if err := waitForPipeline(errc); err != nil {
		return summary, err
	}

	return summary, nil
}

func (g *GEX) findRasters(ctx context.Context, dir string, match func(string) bool) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore hidden files and directories
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !match(info.Name()) {
				return nil
			}

			// Cancellation is honoured between rasters, never
			// mid-tile.
			select {
			case <-ctx.Done():
				return errors.New("walk cancelled")
			default:
			}

			select {
			case out <- path:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// tileRaster cuts one raster into tiles. All failures are recorded in
// the returned summary; one bad raster never aborts the batch.
func (g *GEX) tileRaster(path, outputDir string, cfg tile.Config) Summary {
	var s Summary

	r, err := raster.Open(path)
	if err != nil {
		g.logger.Printf("Skipping raster %s: %v\n", path, err)
		s.RastersFailed++
		s.Failures = append(s.Failures, Failure{Source: path, Err: err})
		return s
	}

	specs, err := tile.Grid(r.Width(), r.Height(), cfg.Size)
	if err != nil {
		g.logger.Printf("Skipping raster %s: %v\n", r.ID(), err)
		s.RastersFailed++
		s.Failures = append(s.Failures, Failure{Source: r.ID(), Err: err})
		return s
	}

	var rasterID int64 = -1
	if g.db != nil {
		if rasterID, err = g.db.AddRaster(r.ID(), r.Width(), r.Height()); err != nil {
			g.logger.Printf("Manifest entry for %s failed: %v\n", r.ID(), err)
			rasterID = -1
		}
	}

	for _, spec := range specs {
		m := r.Region(spec)

		if !cfg.AllowAlpha && !tile.Opaque(m) {
			s.TilesSkipped++
			continue
		}

		artifact, err := tile.Persist(m, r.ID(), spec, cfg, outputDir)
		if err != nil {
			g.logger.Printf("Tile %s failed: %v\n", tile.Name(r.ID(), spec, cfg.Size), err)
			s.TilesFailed++
			s.Failures = append(s.Failures, Failure{Source: r.ID(), Err: err})
			continue
		}
		s.TilesWritten++

		if rasterID >= 0 {
			if err := g.db.AddTile(rasterID, spec.Y/cfg.Size, spec.X/cfg.Size, spec.Width, spec.Height, artifact); err != nil {
				g.logger.Printf("Manifest entry for %s failed: %v\n", artifact, err)
			}
		}
	}

	s.RastersProcessed++
	return s
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
