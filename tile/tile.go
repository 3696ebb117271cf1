/*
Package tile partitions an RGBA raster into a grid of non-overlapping
square tiles suitable for machine learning training sets.

A raster of W by H pixels cut with tile size N yields a grid of
ceil(W/N) columns and ceil(H/N) rows. Interior tiles are exactly N by N;
tiles in the last row or column keep whatever remainder of the raster is
left, so no raster area is ever dropped.
*/
package tile

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when a raster dimension or tile size
// is not a positive integer.
var ErrInvalidDimension = errors.New("tile: invalid dimension")

// Spec describes one tile as a rectangle within its raster, in pixel
// coordinates. X+Width and Y+Height never exceed the raster dimensions.
type Spec struct {
	X, Y          int
	Width, Height int
}

// Config carries the tiling options set by the CLI layer.
type Config struct {
	// Size is the tile edge length in pixels.
	Size int
	// AllowAlpha permits tiles containing non-opaque pixels. When
	// false, a tile with any pixel of alpha below 255 is skipped
	// instead of written.
	AllowAlpha bool
	// Quantize reduces each tile to a 256 color palette before
	// encoding.
	Quantize bool
}

// WriteError wraps a failure to persist a tile artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("tile: writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
