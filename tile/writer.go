package tile

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/ericpauley/go-quantize/quantize"
)

const maxColors = 256

// Name returns the deterministic artifact name for a tile. Row and
// column indices are derived from the tile origin and the configured
// tile size; the trailing dimensions disambiguate remainder tiles from
// full tiles at the same grid position.
func Name(source string, s Spec, size int) string {
	return fmt.Sprintf("%s_%d_%d_%dx%d.png", source, s.Y/size, s.X/size, s.Width, s.Height)
}

// Persist writes the tile image m into dir under its deterministic
// name and returns the artifact path. An existing file with the same
// name is treated as a collision rather than silently overwritten.
func Persist(m *image.RGBA, source string, s Spec, cfg Config, dir string) (string, error) {
	path := filepath.Join(dir, Name(source, s, cfg.Size))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	var out image.Image = m
	if cfg.Quantize {
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(m.Bounds(), q.Quantize(make(color.Palette, 0, maxColors), m))
		draw.Draw(pm, pm.Rect, m, m.Bounds().Min, draw.Src)
		out = pm
	}

	if err := png.Encode(f, out); err != nil {
		f.Close()
		os.Remove(path)
		return "", &WriteError{Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	return path, nil
}
