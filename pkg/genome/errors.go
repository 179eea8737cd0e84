package genome

import "errors"

var (
	// ErrInvalidArgument marks a caller bug: bad bounds, bin count or class list.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a gene symbol does not resolve.
	ErrNotFound = errors.New("not found")
)
