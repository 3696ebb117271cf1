/*
Package raster opens converted RGBA rasters and exposes random access
pixel block reads for the tiling pipeline.
*/
package raster

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/turainai/gex/tile"
)

// ReadError wraps a failure to open or decode a raster source.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("raster: reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Raster is an immutable RGBA pixel grid decoded from an image file.
// Once opened it is safe for any number of concurrent readers.
type Raster struct {
	id  string
	img *image.RGBA
}

// Open decodes the image at path into an RGBA raster. The raster
// identifier is the base file name without its extension and is used to
// name derived artifacts.
func Open(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	img, ok := m.(*image.RGBA)
	if !ok {
		img = image.NewRGBA(image.Rect(0, 0, m.Bounds().Dx(), m.Bounds().Dy()))
		draw.Draw(img, img.Rect, m, m.Bounds().Min, draw.Src)
	}

	base := filepath.Base(path)

	return &Raster{
		id:  strings.TrimSuffix(base, filepath.Ext(base)),
		img: img,
	}, nil
}

// ID returns the source identifier derived from the file name.
func (r *Raster) ID() string {
	return r.id
}

func (r *Raster) Width() int {
	return r.img.Rect.Dx()
}

func (r *Raster) Height() int {
	return r.img.Rect.Dy()
}

// Region copies the pixel block described by s out of the raster. The
// returned image is always exactly s.Width by s.Height with its origin
// at (0, 0).
func (r *Raster) Region(s tile.Spec) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(out, out.Rect, r.img, r.img.Rect.Min.Add(image.Pt(s.X, s.Y)), draw.Src)
	return out
}
