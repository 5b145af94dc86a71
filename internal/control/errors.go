package control

import "errors"

var (
	// ErrInvalidAction is returned for an unrecognised command action.
	ErrInvalidAction = errors.New("control: invalid action")

	// ErrInvalidRequest is returned when a command payload cannot be decoded.
	ErrInvalidRequest = errors.New("control: invalid request")
)
