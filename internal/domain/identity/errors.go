package identity

import "errors"

// ErrNotFound is returned by repositories when no row matches the lookup.
var ErrNotFound = errors.New("not found")
