package scanner

import (
	"iter"
	"path"
	"strings"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

const defaultMaxDepth = 10

// sceneMarkers identify an ancestor prim that names the scene a room
// belongs to.
var sceneMarkers = []string{"scene", "set", "level", "stage"}

// Scanner finds door groups below a root prim.
type Scanner struct {
	graph    stage.Graph
	naming   door.Naming
	maxDepth int
	roots    []string
	excluded []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth bounds how many levels below the root are visited.
func WithMaxDepth(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithRoots sets the candidate roots tried by Roots, in priority order.
func WithRoots(roots ...string) Option {
	return func(s *Scanner) { s.roots = append([]string(nil), roots...) }
}

// WithExcluded sets top-level prim prefixes Roots never returns.
func WithExcluded(prefixes ...string) Option {
	return func(s *Scanner) { s.excluded = append([]string(nil), prefixes...) }
}

// New creates a scanner over graph. If graph also implements
// stage.PrimReader, rooms carry reference metadata.
func New(graph stage.Graph, naming door.Naming, opts ...Option) *Scanner {
	s := &Scanner{
		graph:    graph,
		naming:   naming,
		maxDepth: defaultMaxDepth,
		roots:    []string{"/World", "/Root", "/root", "/Scene", "/scene", "/Set", "/set"},
		excluded: []string{"/Looks", "/materials", "/Physics", "/Render"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan yields every door group below root with the room that contains it.
//
// The room of a door group is its nearest Xform ancestor strictly below
// root, or root itself when no such ancestor exists. Rooms without doors
// never appear.
func (s *Scanner) Scan(root string) iter.Seq2[door.Room, door.Group] {
	return func(yield func(door.Room, door.Group) bool) {
		rooms := make(map[string]door.Room)
		s.walk(root, root, 0, rooms, yield)
	}
}

func (s *Scanner) walk(root, current string, depth int, rooms map[string]door.Room, yield func(door.Room, door.Group) bool) bool {
	if depth >= s.maxDepth {
		return true
	}
	children, err := s.graph.ListChildren(current)
	if err != nil {
		return true
	}

	for _, child := range children {
		name := stage.Name(child)
		if s.naming.IsDoor(name) {
			room := s.roomFor(root, child, rooms)
			if !yield(room, door.Group{Path: child, Name: name, Room: room}) {
				return false
			}
			continue
		}
		if !s.walk(root, child, depth+1, rooms, yield) {
			return false
		}
	}
	return true
}

func (s *Scanner) roomFor(root, doorPath string, cache map[string]door.Room) door.Room {
	roomPath := root
	for p := stage.Parent(doorPath); p != root && stage.IsDescendant(p, root); p = stage.Parent(p) {
		if t, err := s.graph.PrimType(p); err == nil && t == stage.TypeXform {
			roomPath = p
			break
		}
	}

	if room, ok := cache[roomPath]; ok {
		return room
	}
	room := s.describeRoom(roomPath)
	cache[roomPath] = room
	return room
}

// describeRoom fills in the scene name and reference source. The scene is
// the nearest ancestor named like a scene; its references, or failing that
// the nearest referenced ancestor above it, give the source asset.
func (s *Scanner) describeRoom(roomPath string) door.Room {
	room := door.Room{
		Path:        roomPath,
		Name:        stage.Name(roomPath),
		DisplayName: stage.Name(roomPath),
	}
	if roomPath == stage.RootPath {
		room.Name, room.DisplayName = "/", "/"
	}

	scenePath := ""
	for p := stage.Parent(roomPath); p != stage.RootPath && roomPath != stage.RootPath; p = stage.Parent(p) {
		if isSceneName(stage.Name(p)) {
			scenePath = p
			break
		}
	}
	if scenePath == "" {
		return room
	}
	room.SceneName = stage.Name(scenePath)

	reader, ok := s.graph.(stage.PrimReader)
	if !ok {
		return room
	}
	for p := scenePath; p != stage.RootPath; p = stage.Parent(p) {
		prim, err := reader.Prim(p)
		if err != nil || len(prim.References) == 0 {
			continue
		}
		room.ReferenceSource = assetName(prim.References[0])
		break
	}
	if room.Referenced() {
		room.DisplayName = room.Name + " (" + room.SceneName + ")"
	}
	return room
}

func isSceneName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range sceneMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// assetName returns the file name of an asset path without its extension.
func assetName(asset string) string {
	base := path.Base(strings.ReplaceAll(asset, "\\", "/"))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
