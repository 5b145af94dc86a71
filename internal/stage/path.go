package stage

import "strings"

// RootPath is the pseudo-root every prim descends from.
const RootPath = "/"

// Name returns the last element of a prim path ("" for the pseudo-root).
func Name(path string) string {
	if path == RootPath || path == "" {
		return ""
	}
	return path[strings.LastIndexByte(path, '/')+1:]
}

// Parent returns the parent prim path. The parent of a top-level prim and of
// the pseudo-root is RootPath.
func Parent(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return RootPath
	}
	return path[:i]
}

// Join appends a child name to a parent path.
func Join(parent, name string) string {
	if parent == RootPath || parent == "" {
		return RootPath + name
	}
	return parent + "/" + name
}

// IsDescendant reports whether path lies strictly below ancestor.
func IsDescendant(path, ancestor string) bool {
	if ancestor == RootPath {
		return path != RootPath && strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, ancestor+"/")
}

// Depth counts the path elements below the pseudo-root ("/World/A" is 2).
func Depth(path string) int {
	if path == RootPath || path == "" {
		return 0
	}
	return strings.Count(path, "/")
}

// ValidPath reports whether path is absolute, has no empty elements and no
// trailing slash.
func ValidPath(path string) bool {
	if path == RootPath {
		return true
	}
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return false
	}
	return !strings.Contains(path, "//")
}

// ContainsFold reports whether name contains keyword, ignoring case.
// All prim naming conventions are matched this way.
func ContainsFold(name, keyword string) bool {
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(keyword))
}
