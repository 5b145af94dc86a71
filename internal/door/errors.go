package door

import "errors"

// Domain errors for door parameters.
var (
	ErrInvalidType      = errors.New("door: invalid door type")
	ErrInvalidAxis      = errors.New("door: invalid axis")
	ErrInvalidDirection = errors.New("door: invalid direction")
	ErrInvalidDualMode  = errors.New("door: invalid dual mode")
)
