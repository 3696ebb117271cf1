/*
Package convert invokes the GDAL command line tools to turn USGS
elevation GeoTIFF files into PNG rasters on a fixed 0 to 30000 elevation
scale, then downsamples them to half size for tiling.

It requires the gdalinfo and gdal_translate binaries on PATH.
*/
package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// Suffix marks rasters produced by the conversion step.
	Suffix = "_GEXD"
	// ResizedSuffix marks the half scale rasters the tiling stage
	// consumes.
	ResizedSuffix = Suffix + "_resized"

	format   = "PNG"
	scaleMin = 0
	scaleMax = 30000
)

var minMaxRegexp = regexp.MustCompile(`Max=([0-9]*[.][0-9]*),([0-9]*[.][0-9]*)`)

// Converter shells out to GDAL to produce color scaled PNG rasters
// from GeoTIFF sources.
type Converter struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Converter {
	return &Converter{
		logger: logger,
	}
}

// MinMax computes the minimum and maximum elevation of the GeoTIFF at
// path using gdalinfo.
func (c *Converter) MinMax(ctx context.Context, path string) (int, int, error) {
	out, err := exec.CommandContext(ctx, "gdalinfo", "-mm", path).Output()
	if err != nil {
		return 0, 0, fmt.Errorf("convert: gdalinfo: %w", err)
	}
	return parseMinMax(string(out))
}

func parseMinMax(out string) (int, int, error) {
	match := minMaxRegexp.FindStringSubmatch(out)
	if match == nil {
		return 0, 0, errors.New("convert: no min/max elevation in gdalinfo output")
	}

	min, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, 0, err
	}
	max, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return 0, 0, err
	}

	return int(math.Floor(min)), int(math.Floor(max)), nil
}

// File converts the GeoTIFF name within dir, writing the converted and
// half scale rasters alongside it, and returns the path of the half
// scale raster the tiling stage consumes.
func (c *Converter) File(ctx context.Context, dir, name string) (string, error) {
	path := filepath.Join(dir, name)

	min, max, err := c.MinMax(ctx, path)
	if err != nil {
		return "", err
	}
	c.logger.Printf("Elevation range for %s: %d to %d\n", name, min, max)

	base := strings.TrimSuffix(name, filepath.Ext(name))
	converted := filepath.Join(dir, base+Suffix+".png")

	cmd := exec.CommandContext(ctx, "gdal_translate",
		"-of", format, "-ot", "UInt16",
		"-scale", strconv.Itoa(min), strconv.Itoa(max), strconv.Itoa(scaleMin), strconv.Itoa(scaleMax),
		path, converted)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("convert: gdal_translate: %v: %s", err, out)
	}

	resized := filepath.Join(dir, base+ResizedSuffix+".png")
	if err := halveFile(converted, resized); err != nil {
		return "", err
	}

	// The full scale intermediate is only needed to produce the half
	// scale raster.
	if err := os.Remove(converted); err != nil {
		return "", err
	}

	return resized, nil
}

func halveFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, Halve(m))
}

// Halve downsamples m to half its width and height.
func Halve(m image.Image) *image.RGBA {
	b := m.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
	draw.CatmullRom.Scale(out, out.Rect, m, b, draw.Src, nil)
	return out
}
