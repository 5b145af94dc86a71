package mqtt

import "errors"

var (
	// ErrNotConnected is returned while the broker link is down.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrConnect wraps failures of the initial broker connection.
	ErrConnect = errors.New("mqtt: connect failed")

	// ErrPublish wraps publish failures, including oversized payloads.
	ErrPublish = errors.New("mqtt: publish failed")

	// ErrRoute wraps subscribe and unsubscribe failures.
	ErrRoute = errors.New("mqtt: route failed")

	// ErrInvalidQoS is returned for QoS levels above 2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")

	// ErrInvalidTopic is returned for an empty topic or filter.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
