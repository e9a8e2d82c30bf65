package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given session / name
	// (and version) is not cached.
	ErrNotFound = errors.New("artifact not found")
)
