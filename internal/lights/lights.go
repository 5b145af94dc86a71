package lights

import (
	"errors"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// DefaultRoot is used when no light root is configured or discovered.
const DefaultRoot = "/World/lights"

// rootKeyword marks a prim as the light root during discovery.
const rootKeyword = "light"

// Recognised light prim kinds.
const (
	SphereLight   = "SphereLight"
	RectLight     = "RectLight"
	DiskLight     = "DiskLight"
	CylinderLight = "CylinderLight"
	DomeLight     = "DomeLight"
	DistantLight  = "DistantLight"
)

var lightKinds = []string{SphereLight, RectLight, DiskLight, CylinderLight, DomeLight, DistantLight}

// IsLightKind reports whether primType is one of the recognised light kinds.
func IsLightKind(primType string) bool {
	return slices.Contains(lightKinds, primType)
}

// Kinds returns the recognised light kinds.
func Kinds() []string {
	return slices.Clone(lightKinds)
}

// Logger is the logging contract used by the index.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Group is a light group and the lights found beneath it.
type Group struct {
	Path   string   `json:"path"`
	Name   string   `json:"name"`
	Lights []string `json:"lights"`
}

// Association is the lighting attached to one room.
type Association struct {
	Room   string  `json:"room"`
	Groups []Group `json:"groups"`
}

// Index resolves room paths to light groups under a light root.
//
// It reads the graph on every call, so it always reflects the current
// scene. Safe for concurrent use when the graph is.
type Index struct {
	graph  stage.Graph
	logger Logger

	mu   sync.RWMutex
	root string
}

// NewIndex creates an index over the light hierarchy at root.
// An empty root means DefaultRoot.
func NewIndex(graph stage.Graph, root string) *Index {
	if root == "" {
		root = DefaultRoot
	}
	return &Index{graph: graph, root: root, logger: noopLogger{}}
}

// SetLogger sets the logger for the index.
func (ix *Index) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	ix.logger = logger
}

// Root returns the light root path.
func (ix *Index) Root() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.root
}

// SetRoot moves the index to a new light root, as after a stage reload.
func (ix *Index) SetRoot(root string) {
	if root == "" {
		root = DefaultRoot
	}
	ix.mu.Lock()
	ix.root = root
	ix.mu.Unlock()
}

// Rooms returns the per-room containers under the light root.
func (ix *Index) Rooms() []string {
	return ix.xformChildren(ix.Root())
}

// Groups returns the light groups of the room at roomPath.
//
// The room is matched by name: /World/Kitchen maps to <root>/Kitchen.
// A room without a light container has no groups.
func (ix *Index) Groups(roomPath string) []string {
	name := stage.Name(roomPath)
	if name == "" {
		return []string{}
	}
	return ix.xformChildren(stage.Join(ix.Root(), name))
}

// Lights returns every recognised light prim beneath groupPath, depth first
// in authored order.
func (ix *Index) Lights(groupPath string) []string {
	out := []string{}
	ix.collect(groupPath, &out)
	return out
}

// ForRoom returns the room's light groups with their lights.
func (ix *Index) ForRoom(roomPath string) Association {
	a := Association{Room: roomPath, Groups: []Group{}}
	for _, g := range ix.Groups(roomPath) {
		a.Groups = append(a.Groups, Group{
			Path:   g,
			Name:   stage.Name(g),
			Lights: ix.Lights(g),
		})
	}
	return a
}

func (ix *Index) collect(path string, out *[]string) {
	children, err := ix.graph.ListChildren(path)
	if err != nil {
		ix.logMissing(path, err)
		return
	}
	for _, child := range children {
		kind, err := ix.graph.PrimType(child)
		if err != nil {
			continue
		}
		if IsLightKind(kind) {
			*out = append(*out, child)
		}
		ix.collect(child, out)
	}
}

// xformChildren lists the Xform and Scope children of path.
func (ix *Index) xformChildren(path string) []string {
	children, err := ix.graph.ListChildren(path)
	if err != nil {
		ix.logMissing(path, err)
		return []string{}
	}

	out := []string{}
	for _, child := range children {
		kind, err := ix.graph.PrimType(child)
		if err != nil {
			continue
		}
		if kind == stage.TypeXform || kind == stage.TypeScope {
			out = append(out, child)
		}
	}
	return out
}

func (ix *Index) logMissing(path string, err error) {
	if errors.Is(err, stage.ErrPrimNotFound) {
		ix.logger.Debug("light prim not found", "path", path)
		return
	}
	ix.logger.Warn("reading light hierarchy failed", "path", path, "error", err)
}

// FindRoot locates the light root beneath from, searching breadth first up
// to maxDepth levels.
//
// The first Xform whose name contains "light" wins. Failing that, the parent
// of the first light prim found is used, and failing that DefaultRoot.
func FindRoot(graph stage.Graph, from string, maxDepth int) string {
	if from == "" {
		from = stage.RootPath
	}

	type entry struct {
		path  string
		depth int
	}
	queue := []entry{{from, 0}}
	firstLight := ""

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		children, err := graph.ListChildren(e.path)
		if err != nil {
			continue
		}
		for _, child := range children {
			kind, err := graph.PrimType(child)
			if err != nil {
				continue
			}
			switch {
			case kind == stage.TypeXform && stage.ContainsFold(stage.Name(child), rootKeyword):
				return child
			case IsLightKind(kind) && firstLight == "":
				firstLight = child
			}
			if e.depth+1 < maxDepth {
				queue = append(queue, entry{child, e.depth + 1})
			}
		}
	}

	if firstLight != "" {
		return stage.Parent(firstLight)
	}
	return DefaultRoot
}
