package inventory

import "errors"

// Domain errors for the door inventory.
var (
	// ErrDoorNotFound is returned when no scanned door has the given path.
	ErrDoorNotFound = errors.New("inventory: door not found")

	// ErrRoomNotFound is returned when no scanned room has the given path.
	ErrRoomNotFound = errors.New("inventory: room not found")
)
