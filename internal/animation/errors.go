package animation

import "errors"

// Domain errors for door animation.
var (
	// ErrUnclassified is returned when animating a door of Unknown type.
	ErrUnclassified = errors.New("animation: door is not classified")

	// ErrBusy is returned when a door already has an active or paused animation.
	ErrBusy = errors.New("animation: door is busy")

	// ErrInvalidTransition is returned when a request does not apply to the
	// door's current state (closing a closed door, pausing an idle one).
	ErrInvalidTransition = errors.New("animation: invalid state transition")

	// ErrInvalidParams is returned for negative or non-finite parameters.
	ErrInvalidParams = errors.New("animation: invalid parameters")
)
