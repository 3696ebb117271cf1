/*
Package gex converts USGS elevation GeoTIFF files into color mapped PNG
rasters and cuts them into fixed size square tiles for machine learning
training sets.
*/
package gex

import "log"

type GEX struct {
	db     *TileDB
	logger *log.Logger
}

func New(db *TileDB, logger *log.Logger) *GEX {
	return &GEX{
		db:     db,
		logger: logger,
	}
}
