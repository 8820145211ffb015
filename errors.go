package kinetic

import "errors"

var (
	// ErrStaleHandle is returned for handles whose body or shape was released.
	ErrStaleHandle = errors.New("stale handle")
	// ErrInvalidTimestep is returned by Step for a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("invalid timestep")
	// ErrShapeInUse is returned when releasing a shape still attached to a body.
	ErrShapeInUse = errors.New("shape still attached")
)
