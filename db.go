package gex

import (
	"crypto/sha1"
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// TileDB is a sqlite manifest of every tile the pipeline has written,
// keyed by source raster and grid position. Training set curation
// tools can locate and audit artifacts without rescanning the output
// directory.
type TileDB struct {
	db *sql.DB
}

func NewTileDB(file string) (*TileDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS raster (id INTEGER PRIMARY KEY NOT NULL, source TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS tile (id INTEGER PRIMARY KEY NOT NULL, raster_id INTEGER NOT NULL, grid_row INTEGER NOT NULL, grid_col INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, sha1 TEXT NOT NULL, path TEXT NOT NULL UNIQUE, FOREIGN KEY(raster_id) REFERENCES raster(id))"); err != nil {
		return nil, err
	}

	return &TileDB{
		db: db,
	}, nil
}

func (db *TileDB) Close() error {
	return db.db.Close()
}

// AddRaster records a source raster, returning the existing row if the
// source has been seen before.
func (db *TileDB) AddRaster(source string, width, height int) (int64, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM raster WHERE source = ?", source).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := db.db.Exec("INSERT INTO raster (source, width, height) VALUES (?, ?, ?)", source, width, height)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// AddTile records a written tile artifact along with the SHA1 of its
// contents.
func (db *TileDB) AddTile(raster int64, row, col, width, height int, path string) error {
	sum, err := sha1File(path)
	if err != nil {
		return err
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO tile (raster_id, grid_row, grid_col, width, height, sha1, path) VALUES (?, ?, ?, ?, ?, ?, ?)", raster, row, col, width, height, sum, path); err != nil {
		return err
	}
	return nil
}

// TileCount returns how many tiles have been recorded for source.
func (db *TileDB) TileCount(source string) (int, error) {
	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM tile AS t JOIN raster AS r ON t.raster_id = r.id WHERE r.source = ?", source).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func sha1File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
