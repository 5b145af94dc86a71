// Package logging is the service's log/slog setup.
//
// Every entry carries service and version fields. Components get a child
// logger from Component, and per-door work adds Door:
//
//	log := logging.New(cfg.Logging, version)
//	log.Component("animation").Door(path).Info("session completed")
//
// The logging section picks json or text output, the level and stdout or
// stderr:
//
//	logging:
//	  level: info
//	  format: json
//	  output: stdout
package logging
