// Package control turns door commands into controller calls.
//
// The REST API and the MQTT command listener both accept the same command
// shape: an action (open, close, pause, resume, reset, stop) plus optional
// animation parameters that override the configured defaults. A Service
// resolves the door through the inventory and drives the controller.
package control
