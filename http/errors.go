package http

import "errors"

// ErrDestinationNotFound is returned when a named destination is not configured.
var ErrDestinationNotFound = errors.New("destination not found")
