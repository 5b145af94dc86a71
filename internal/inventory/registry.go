package inventory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/scanner"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Registry caches the classified doors of a stage, grouped by room.
type Registry struct {
	scanner    *scanner.Scanner
	classifier *door.Classifier
	root       string

	mu        sync.RWMutex
	rooms     []scanner.RoomDoors
	doors     map[string]door.Group
	roomOf    map[string]door.Room
	overrides map[string]door.Axis
	logger    Logger
}

// New creates a registry. An empty root scans every root the scanner
// discovers. The cache is empty until Refresh is called.
func New(sc *scanner.Scanner, cl *door.Classifier, root string) *Registry {
	return &Registry{
		scanner:    sc,
		classifier: cl,
		root:       root,
		doors:      make(map[string]door.Group),
		roomOf:     make(map[string]door.Room),
		overrides:  make(map[string]door.Axis),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Refresh rescans the stage and reclassifies every door, replacing the
// cache. Axis overrides survive for doors that still exist.
//
// Returns:
//   - int: Number of doors found
func (r *Registry) Refresh() int {
	roots := []string{r.root}
	if r.root == "" {
		roots = r.scanner.Roots()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var rooms []scanner.RoomDoors
	doors := make(map[string]door.Group)
	roomOf := make(map[string]door.Room)
	unknown := 0

	for _, root := range roots {
		for _, rd := range r.scanner.Rooms(root) {
			kept := scanner.RoomDoors{Room: rd.Room}
			for _, g := range rd.Doors {
				if _, dup := doors[g.Path]; dup {
					continue
				}
				g = r.classifier.Classify(g, r.overrides[g.Path])
				if !g.Classified() {
					unknown++
					r.logger.Debug("door left unclassified", "door", g.Path, "reason", g.Reason)
				}
				doors[g.Path] = g
				roomOf[g.Path] = rd.Room
				kept.Doors = append(kept.Doors, g)
			}
			if len(kept.Doors) > 0 {
				rooms = append(rooms, kept)
			}
		}
	}

	for path := range r.overrides {
		if _, ok := doors[path]; !ok {
			delete(r.overrides, path)
		}
	}

	r.rooms, r.doors, r.roomOf = rooms, doors, roomOf
	r.logger.Info("door inventory refreshed", "rooms", len(rooms), "doors", len(doors), "unclassified", unknown)
	return len(doors)
}

// Rooms returns every room with its doors, in scan order.
func (r *Registry) Rooms() []scanner.RoomDoors {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scanner.RoomDoors, len(r.rooms))
	for i, rd := range r.rooms {
		out[i] = copyRoomDoors(rd)
	}
	return out
}

// Room returns one room with its doors. key is the room path or its slug.
func (r *Registry) Room(key string) (scanner.RoomDoors, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rd := range r.rooms {
		if rd.Room.Path == key || Slug(rd.Room.Path) == key {
			return copyRoomDoors(rd), nil
		}
	}
	return scanner.RoomDoors{}, fmt.Errorf("%w: %s", ErrRoomNotFound, key)
}

// Doors returns every door in scan order.
func (r *Registry) Doors() []door.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []door.Group
	for _, rd := range r.rooms {
		for _, g := range rd.Doors {
			out = append(out, copyGroup(g))
		}
	}
	return out
}

// Door returns the classified door at path.
func (r *Registry) Door(path string) (door.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.doors[path]
	if !ok {
		return door.Group{}, fmt.Errorf("%w: %s", ErrDoorNotFound, path)
	}
	return copyGroup(g), nil
}

// RoomOf returns the room a door was found in.
func (r *Registry) RoomOf(doorPath string) (door.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.roomOf[doorPath]
	if !ok {
		return door.Room{}, fmt.Errorf("%w: %s", ErrDoorNotFound, doorPath)
	}
	return room, nil
}

// Find returns the door whose slug or path matches key.
func (r *Registry) Find(key string) (door.Group, error) {
	if g, err := r.Door(key); err == nil {
		return g, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rd := range r.rooms {
		for _, g := range rd.Doors {
			if Slug(g.Path) == key {
				return copyGroup(g), nil
			}
		}
	}
	return door.Group{}, fmt.Errorf("%w: %s", ErrDoorNotFound, key)
}

// WithAxis returns the door reclassified under axis without pinning it.
func (r *Registry) WithAxis(path string, axis door.Axis) (door.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.doors[path]
	if !ok {
		return door.Group{}, fmt.Errorf("%w: %s", ErrDoorNotFound, path)
	}
	return copyGroup(r.classifier.Classify(copyGroup(g), axis)), nil
}

// SetAxis pins a door's axis and reclassifies it. AxisAuto clears the pin.
// The pin is kept across refreshes while the door exists.
func (r *Registry) SetAxis(path string, axis door.Axis) (door.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.doors[path]
	if !ok {
		return door.Group{}, fmt.Errorf("%w: %s", ErrDoorNotFound, path)
	}

	if axis == door.AxisAuto {
		delete(r.overrides, path)
	} else {
		r.overrides[path] = axis
	}

	g = r.classifier.Classify(g, axis)
	r.doors[path] = g
	for i := range r.rooms {
		if j := slices.IndexFunc(r.rooms[i].Doors, func(d door.Group) bool { return d.Path == path }); j >= 0 {
			r.rooms[i].Doors[j] = g
		}
	}
	return copyGroup(g), nil
}

func copyGroup(g door.Group) door.Group {
	g.Panels = slices.Clone(g.Panels)
	return g
}

func copyRoomDoors(rd scanner.RoomDoors) scanner.RoomDoors {
	out := scanner.RoomDoors{Room: rd.Room, Doors: make([]door.Group, len(rd.Doors))}
	for i, g := range rd.Doors {
		out.Doors[i] = copyGroup(g)
	}
	return out
}
