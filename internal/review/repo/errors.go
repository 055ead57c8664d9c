package repo

import "errors"

// ErrNotFound indicates that no active review matched the lookup.
var ErrNotFound = errors.New("review: not found")
