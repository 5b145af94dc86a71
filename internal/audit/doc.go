// Package audit records who commanded which door, from where, and whether
// the command was accepted.
//
// Entries are written by the REST API (with the bearer token subject) and,
// through Recorder, by the MQTT command listener. They live in the
// audit_logs table and are listed newest first.
package audit
