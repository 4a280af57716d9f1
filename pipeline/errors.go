package pipeline

import "errors"

var (
	// ErrNoFrames is returned when assembly finds nothing to encode. The
	// cycle stops before the encoder or any network call runs.
	ErrNoFrames = errors.New("no frames found to assemble")

	// ErrEncodeFailed is returned on a non-zero encoder exit. Source frames
	// are preserved for the next cycle.
	ErrEncodeFailed = errors.New("encoder exited with an error")

	// ErrBadFrequency is returned for an upload frequency outside 1..6.
	ErrBadFrequency = errors.New("upload frequency must be between 1 and 6")
)
