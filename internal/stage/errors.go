package stage

import "errors"

// Domain errors for scene graph access.
var (
	// ErrPrimNotFound is returned when a path does not address a prim.
	ErrPrimNotFound = errors.New("stage: prim not found")

	// ErrPrimExists is returned when defining a prim at an occupied path.
	ErrPrimExists = errors.New("stage: prim already exists")

	// ErrInvalidPath is returned for relative or malformed prim paths.
	ErrInvalidPath = errors.New("stage: invalid prim path")

	// ErrInvalidDocument is returned when a stage file cannot be decoded.
	ErrInvalidDocument = errors.New("stage: invalid stage document")
)
