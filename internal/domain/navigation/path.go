package navigation

import (
	"path"
	"strings"
)

// CleanPath returns p as an absolute, slash-separated path without a
// trailing slash. ".." elements are resolved and never climb above "/".
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return path.Clean("/" + p)
}

// ParentPath returns the parent of p, or "/" for top-level paths.
func ParentPath(p string) string {
	p = CleanPath(p)
	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return "/"
	}
	return p[:idx]
}

// PathSegments splits p into its non-empty elements.
func PathSegments(p string) []string {
	out := []string{}
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SegmentPath rebuilds the path made of segments[0..i].
func SegmentPath(segments []string, i int) string {
	if i < 0 || len(segments) == 0 {
		return "/"
	}
	if i >= len(segments) {
		i = len(segments) - 1
	}
	return "/" + strings.Join(segments[:i+1], "/")
}

// Join appends name to dir the way new remote entries are addressed.
func Join(dir, name string) string {
	if dir == "/" || dir == "" {
		return "/" + name
	}
	return dir + "/" + name
}
