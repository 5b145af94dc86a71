// Package frame drives the animation controller from a wall-clock ticker.
//
// A Loop stands in for a renderer's per-frame callback: at the configured
// frame rate it calls Update with the real time elapsed since the previous
// frame. The controller clamps long gaps, so a stalled loop never makes a
// door jump.
package frame
