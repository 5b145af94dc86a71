// Package api implements the HTTP REST API and WebSocket server for the
// door interaction service.
//
// This package provides:
//   - REST endpoints listing rooms, doors, sessions and room lighting
//   - Door commands (open, close, pause, resume, reset, stop)
//   - Door transition history and the command audit log from SQLite
//   - WebSocket hub relaying door.state_changed events
//   - Optional JWT bearer authentication with ticket-based WebSocket auth
//   - Middleware stack: request IDs, access log by route pattern, panic recovery and CORS
//
// # Architecture
//
// The API server is one of three command surfaces, next to MQTT and the
// doorctl CLI. All of them go through control.Service, so the same
// per-door locking and error semantics apply everywhere. State changes
// reach WebSocket clients through the notify dispatcher, which calls
// Hub.Broadcast.
//
// # Door and room keys
//
// Prim paths contain slashes, so routes address doors and rooms by slug
// (see inventory.Slug). GET /doors lists both path and slug.
//
// # Error mapping
//
//	inventory.ErrDoorNotFound, ErrRoomNotFound    404
//	control.ErrInvalidAction, ErrInvalidRequest   400
//	animation.ErrBusy, ErrInvalidTransition       409
//	animation.ErrUnclassified, ErrInvalidParams   422
package api
