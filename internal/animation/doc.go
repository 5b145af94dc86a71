// Package animation drives door opening and closing.
//
// The Controller owns one session per door group, keyed by door path. A
// session captures the panels' closed pose the first time the door is
// touched, computes open targets from the door's classification and the
// caller's parameters, and interpolates between the two on every Update.
//
// # State machine
//
//	Idle ──Open──▶ Opening ──(progress=1)──▶ Completed(open)
//	Completed(open) ──Close──▶ Closing ──(progress=1)──▶ Completed(closed)
//	Completed(closed) ──Open──▶ Opening
//	Opening|Closing ──Pause──▶ Paused ──Resume──▶ previous motion
//	any ──Reset──▶ Idle (panels restored to the captured closed pose)
//
// While a door is Opening, Closing or Paused it is locked: further Open or
// Close requests fail with ErrBusy, except that Open on a door paused while
// opening (or Close on one paused while closing) resumes it.
//
// # Timing
//
// Progress advances by elapsed wall-clock time, not by tick count:
//
//	progress += min(elapsed, MaxTickDelta) × speed × BaseRate
//
// so a door at speed 1 with BaseRate 1 takes one second regardless of frame
// rate. Speed 0 never completes; a very large speed completes on the first
// tick. The controller never blocks or sleeps; the frame loop calls Update.
//
// Thread Safety: all Controller methods are safe for concurrent use.
// Observers are notified after the controller lock is released.
package animation
