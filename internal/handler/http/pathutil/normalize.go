// Package pathutil holds path helpers shared by handlers, metrics and tracing.
package pathutil

import "strings"

// idCollections are path segments whose next segment is a numeric ID.
var idCollections = map[string]struct{}{
	"articles": {},
}

// NormalizePath turns a request path into a low-cardinality route label.
// A numeric segment directly after a known collection becomes ":id"; the
// query string and a trailing slash are dropped. Anything else is returned
// as is, so /v1/articles/7 becomes /v1/articles/:id.
func NormalizePath(path string) string {
	path, _, _ = strings.Cut(path, "?")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	dir, last, found := cutLast(path)
	if !found || !isDigits(last) {
		return path
	}
	if _, coll, _ := cutLast(dir); coll != "" {
		if _, ok := idCollections[coll]; ok {
			return dir + "/:id"
		}
	}
	return path
}

func cutLast(path string) (dir, last string, found bool) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
