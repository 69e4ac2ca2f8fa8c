package cache

import "errors"

// ErrCorrupt is returned when a stored entry cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache entry")
