package tile

import "image"

// Opaque reports whether every pixel in m is fully opaque. Elevation
// rasters use transparency for no-data regions, so a single pixel with
// alpha below 255 disqualifies the whole tile.
func Opaque(m *image.RGBA) bool {
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		row := m.Pix[i : i+b.Dx()*4]
		for x := 3; x < len(row); x += 4 {
			if row[x] != 0xff {
				return false
			}
		}
	}
	return true
}
