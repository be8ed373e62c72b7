package geotile

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
)

var (
	// ErrInvalidGeometry marks a record whose geometry cannot produce a
	// bounding box. Such records are skipped and counted, never returned.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrNoValidRecords is returned when a non-empty batch holds no record
	// with a valid geometry.
	ErrNoValidRecords = errors.New("no valid records")

	// ErrInvalidMaxRecords is returned when max records per tile is below 1.
	ErrInvalidMaxRecords = errors.New("max records per tile must be at least 1")

	// ErrInvalidBoundingBox is returned for a malformed query box.
	ErrInvalidBoundingBox = geom.ErrInvalidBoundingBox
)

// StorageWriteError is returned when a tile or the manifest cannot be
// written. It aborts the partition run.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageWriteError struct {
	Name string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed for %s: %v", e.Name, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// StorageReadError describes a candidate tile that could not be loaded
// during extraction. Extraction continues without it.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageReadError struct {
	TileID   model.TileID
	Location string
	Err      error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("storage read failed for tile %s (%s): %v", e.TileID, e.Location, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }
