// Package scanner walks a scene graph and finds door groups and the rooms
// that contain them.
//
// Scan is lazy: it yields (Room, Group) pairs depth-first in authored child
// order and stops descending at each door group, so panel prims nested
// inside a door are never reported as separate doors. A missing root, or a
// root without children, yields nothing and is not an error.
package scanner
