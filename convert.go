package gex

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turainai/gex/convert"
)

// Convert runs the GeoTIFF conversion over every .tif file in dir,
// writing converted rasters alongside the inputs. Files already
// converted are left alone. A failed conversion is logged and skipped;
// the remaining files are still processed.
func (g *GEX) Convert(ctx context.Context, dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}

	files, err := d.Readdirnames(0)
	d.Close()
	if err != nil {
		return err
	}
	sort.Strings(files)

	var tifs []string
	for _, file := range files {
		if filepath.Ext(file) == ".tif" {
			tifs = append(tifs, file)
		}
	}
	g.logger.Printf("%d GeoTIFF file(s) found in %s\n", len(tifs), dir)

	c := convert.New(g.logger)

	for i, file := range tifs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		base := strings.TrimSuffix(file, filepath.Ext(file))
		resized := filepath.Join(dir, base+convert.ResizedSuffix+".png")
		if _, err := os.Stat(resized); err == nil {
			g.logger.Printf("Already converted: %s\n", file)
			continue
		}

		g.logger.Printf("Converting %d/%d: %s\n", i+1, len(tifs), file)
		if _, err := c.File(ctx, dir, file); err != nil {
			g.logger.Printf("Conversion of %s failed: %v\n", file, err)
		}
	}

	return nil
}
