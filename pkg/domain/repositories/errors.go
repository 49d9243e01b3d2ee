package repositories

import "errors"

// ErrNotFound is wrapped by every repository lookup that finds nothing
var ErrNotFound = errors.New("not found")
