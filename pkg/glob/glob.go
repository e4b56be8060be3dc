// Package glob matches slash-separated paths against shell patterns with
// "**" support.
package glob

import (
	"path"
	"path/filepath"
	"strings"
)

// Match reports whether p matches pattern. Patterns without a slash also
// match the final path element, so "*.vue" matches "src/App.vue".
// It supports patterns like "*.ts", "src/**", "**/node_modules", etc.
func Match(p, pattern string) bool {
	p = filepath.ToSlash(p)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		return matchDoubleStar(p, pattern)
	}

	if matched, err := path.Match(pattern, p); err == nil && matched {
		return true
	}
	matched, err := path.Match(pattern, path.Base(p))
	return err == nil && matched
}

// Any reports whether p matches one of patterns.
func Any(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if Match(p, pattern) {
			return true
		}
	}
	return false
}

// Valid reports whether pattern is well formed.
func Valid(pattern string) bool {
	for _, part := range strings.Split(filepath.ToSlash(pattern), "**") {
		if _, err := path.Match(strings.Trim(part, "/"), ""); err != nil {
			return false
		}
	}
	return true
}

func matchDoubleStar(p, pattern string) bool {
	parts := strings.Split(pattern, "**")

	// "**/foo" matches foo anywhere.
	if parts[0] == "" && len(parts) == 2 {
		suffix := strings.TrimPrefix(parts[1], "/")
		if suffix == "" {
			return true
		}
		if strings.HasSuffix(p, suffix) {
			return true
		}
		for _, elem := range strings.Split(p, "/") {
			if matched, err := path.Match(suffix, elem); err == nil && matched {
				return true
			}
		}
		return strings.Contains(p, suffix+"/") || strings.HasPrefix(p, suffix)
	}

	// "foo/**" matches anything under foo.
	if parts[1] == "" || parts[1] == "/" {
		prefix := strings.TrimSuffix(parts[0], "/")
		if prefix == "" {
			return true
		}
		return strings.HasPrefix(p, prefix+"/") || p == prefix
	}

	// "foo/**/bar": prefix at the start, suffix at the end.
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[len(parts)-1], "/")

	if prefix != "" && !strings.HasPrefix(p, prefix) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(p, suffix) {
		matched, err := path.Match(suffix, path.Base(p))
		if err != nil || !matched {
			return false
		}
	}
	return true
}
