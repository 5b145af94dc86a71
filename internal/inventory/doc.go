// Package inventory keeps the classified door inventory of the stage.
//
// A Registry runs the scanner and classifier over the stage and caches the
// result by door path, so API handlers and command listeners resolve a door
// without walking the scene. The cache is rebuilt by Refresh, which the
// daemon calls at startup and after every stage reload.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Returned values are
// deep copies; callers may modify them freely.
package inventory
