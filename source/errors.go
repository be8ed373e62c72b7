package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when no part of a location could be read.
var ErrNoData = errors.New("source: no data could be processed")

// UnknownLocationError is returned when the links CSV has no row for the
// requested location.
type UnknownLocationError struct {
	Location string
	// Available lists the known locations in sorted order.
	Available []string
}

func (e *UnknownLocationError) Error() string {
	return fmt.Sprintf("source: no data found for %q (available: %s)", e.Location, strings.Join(e.Available, ", "))
}

// PartError records a dataset part that failed to download or decode.
type PartError struct {
	URL string
	Err error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("source: part %s: %v", e.URL, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}
