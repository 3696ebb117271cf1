package tile

import "fmt"

// Grid computes the row-major sequence of tile rectangles covering a
// raster of the given dimensions. Every tile is size by size pixels
// except in the last row or column, where the remainder of the raster
// is emitted as a smaller tile. If size is at least as large as both
// dimensions a single tile covering the whole raster is returned.
func Grid(width, height, size int) ([]Spec, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d raster", ErrInvalidDimension, width, height)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: tile size %d", ErrInvalidDimension, size)
	}

	cols := (width + size - 1) / size
	rows := (height + size - 1) / size

	specs := make([]Spec, 0, cols*rows)
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			specs = append(specs, Spec{
				X:      x,
				Y:      y,
				Width:  min(size, width-x),
				Height: min(size, height-y),
			})
		}
	}

	return specs, nil
}
