package storage

import "errors"

// ErrNotFound is returned when a preference key has no stored value.
var ErrNotFound = errors.New("not found")
