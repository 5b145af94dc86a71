package notify

import "errors"

// Domain errors for event dispatch.
var (
	// ErrAlreadyRunning is returned by Start on a running Dispatcher.
	ErrAlreadyRunning = errors.New("notify: dispatcher already running")

	// ErrNoSlug is returned for a command topic without a door slug.
	ErrNoSlug = errors.New("notify: topic has no door slug")
)
