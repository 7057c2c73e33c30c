// File: stratus/config/helper.go
package config

import (
	"regexp"
	"sort"
	"strings"
)

// keySegment matches a TOML bare key.
var keySegment = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func isValidKeySegment(s string) bool {
	return keySegment.MatchString(s)
}

// validatePath checks every dot-separated segment of path.
func validatePath(path string) (string, bool) {
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return segment, false
		}
	}
	return "", true
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// flattenMap returns the leaves of a nested table keyed by dotted path.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	walkLeaves(nested, prefix,
		func(string, map[string]any) bool { return false },
		func(path string, value any) { flat[path] = value })
	return flat
}

// walkLeaves visits nested depth-first. stop reports whether a path should be
// treated as a leaf even when its value is a table.
func walkLeaves(nested map[string]any, prefix string, stop func(string, map[string]any) bool, visit func(string, any)) {
	for key, value := range nested {
		path := joinPath(prefix, key)
		if sub, isTable := value.(map[string]any); isTable && !stop(path, sub) {
			walkLeaves(sub, path, stop, visit)
			continue
		}
		visit(path, value)
	}
}

// foldMapKeys returns a copy of nested with every key lower-cased.
// Keys folding to the same name resolve to the lexically greatest original.
func foldMapKeys(nested map[string]any) map[string]any {
	keys := make([]string, 0, len(nested))
	for key := range nested {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	folded := make(map[string]any, len(nested))
	for _, key := range keys {
		value := nested[key]
		if sub, isTable := value.(map[string]any); isTable {
			value = foldMapKeys(sub)
		}
		folded[strings.ToLower(key)] = value
	}
	return folded
}

// setNestedValue stores value at a dotted path, replacing any non-table
// value found on the way.
func setNestedValue(nested map[string]any, path string, value any) {
	parent, last, _ := strings.Cut(path, ".")
	if last == "" {
		nested[parent] = value
		return
	}
	sub, isTable := nested[parent].(map[string]any)
	if !isTable {
		sub = make(map[string]any)
		nested[parent] = sub
	}
	setNestedValue(sub, last, value)
}

// lookupTable returns the table at a dotted path; ok is false when something
// other than a table lives there. A missing path yields an empty table.
func lookupTable(nested map[string]any, path string) (table map[string]any, leaf any, ok bool) {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested, nested, true
	}

	head, rest, _ := strings.Cut(path, ".")
	value, exists := nested[head]
	if !exists {
		return map[string]any{}, nil, true
	}
	sub, isTable := value.(map[string]any)
	if !isTable {
		if rest == "" {
			return nil, value, false
		}
		return map[string]any{}, nil, true
	}
	if rest == "" {
		return sub, sub, true
	}
	return lookupTable(sub, rest)
}

// sortedPaths returns the keys of items in lexical order
func sortedPaths(items map[string]configItem) []string {
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
