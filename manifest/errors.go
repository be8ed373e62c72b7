package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrNotFound is returned when no manifest exists in the store.
	ErrNotFound = errors.New("manifest not found")

	// ErrInvalidManifest is returned when a manifest blob cannot be decoded.
	ErrInvalidManifest = errors.New("invalid manifest")
)
