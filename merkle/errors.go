package merkle

import "errors"

var (
	// ErrOutOfRange is returned when a subtree or consistency request
	// references leaves outside [0, size).
	ErrOutOfRange = errors.New("merkle: index out of range")

	// ErrInvalidRange is returned when lo >= hi for a subtree request, or
	// m > n for a consistency proof request.
	ErrInvalidRange = errors.New("merkle: invalid range")
)
