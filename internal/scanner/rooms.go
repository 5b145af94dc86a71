package scanner

import (
	"slices"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// RoomDoors is a room and the door groups found in it, in scan order.
type RoomDoors struct {
	Room  door.Room    `json:"room"`
	Doors []door.Group `json:"doors"`
}

// Rooms collects Scan into rooms, ordered by first appearance.
func (s *Scanner) Rooms(root string) []RoomDoors {
	var out []RoomDoors
	index := make(map[string]int)

	for room, group := range s.Scan(root) {
		i, ok := index[room.Path]
		if !ok {
			i = len(out)
			index[room.Path] = i
			out = append(out, RoomDoors{Room: room})
		}
		out[i].Doors = append(out[i].Doors, group)
	}
	return out
}

// Roots returns the prims worth scanning: the configured candidates that
// exist, otherwise the top-level Xforms outside the excluded prefixes,
// otherwise the pseudo-root.
func (s *Scanner) Roots() []string {
	var found []string
	for _, candidate := range s.roots {
		if _, err := s.graph.PrimType(candidate); err == nil {
			found = append(found, candidate)
		}
	}
	if len(found) > 0 {
		return found
	}

	top, err := s.graph.ListChildren(stage.RootPath)
	if err == nil {
		for _, child := range top {
			if s.isExcluded(child) {
				continue
			}
			if t, err := s.graph.PrimType(child); err == nil && t == stage.TypeXform {
				found = append(found, child)
			}
		}
	}
	if len(found) > 0 {
		return found
	}
	return []string{stage.RootPath}
}

// DefaultRoot returns the first of Roots.
func (s *Scanner) DefaultRoot() string {
	return s.Roots()[0]
}

func (s *Scanner) isExcluded(p string) bool {
	return slices.ContainsFunc(s.excluded, func(prefix string) bool {
		return p == prefix || stage.IsDescendant(p, prefix)
	})
}
