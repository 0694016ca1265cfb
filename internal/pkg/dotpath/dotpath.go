// Package dotpath resolves dot-separated paths inside loosely structured
// JSON-like data (maps of string to any).
package dotpath

import "strings"

// Lookup walks obj segment by segment and returns the value at path. The
// second return is false the moment any segment is missing or the current
// value is not a map; Lookup never panics.
func Lookup(obj map[string]any, path string) (any, bool) {
	var current any = obj

	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
