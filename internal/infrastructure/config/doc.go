// Package config loads the door service configuration from YAML.
//
// Values are layered: built-in defaults, then the file, then GRAYLOGIC_*
// environment variables. Validate reports every problem at once rather
// than stopping at the first.
//
// The naming section holds the prim naming conventions (door keyword,
// panel-assembly keywords, left and right keywords), so stages authored
// with another convention scan without code changes. The animation section
// sets the frame rate and the parameters a command falls back to.
//
// Keep the MQTT password, InfluxDB token and JWT secret out of the file
// and pass them through the environment.
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	interval := cfg.GetFrameInterval()
package config
