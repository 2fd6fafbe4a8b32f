// Package paths implements the path algebra used for generated build files.
//
// Generated paths are slash-separated regardless of the host, so the same
// graph produces byte-identical files everywhere; the windows platform
// converts separators at the very end. Backslashes in inputs are accepted and
// read as separators.
package paths

import (
	"path"
	"strings"
	"sync"
)

// ToSlash converts backslash separators to forward slashes.
func ToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// IsAbs reports whether p is rooted, either POSIX style or with a drive letter.
func IsAbs(p string) bool {
	p = ToSlash(p)
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) >= 3 && isLetter(p[0]) && p[1] == ':' && p[2] == '/'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Join joins elements, skipping empty ones, and cleans the result.
func Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e != "" {
			parts = append(parts, ToSlash(e))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return path.Join(parts...)
}

// Normalize cleans p; the empty path normalizes to ".".
func Normalize(p string) string {
	return path.Clean(ToSlash(p))
}

// Dir returns all but the last element of p.
func Dir(p string) string {
	return path.Dir(ToSlash(p))
}

// Base returns the last element of p.
func Base(p string) string {
	return path.Base(ToSlash(p))
}

// TrimExt strips the last extension from the base name of p.
func TrimExt(name string) string {
	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// Abs resolves p against cwd.
func Abs(cwd, p string) string {
	if IsAbs(p) {
		return Normalize(p)
	}
	return Normalize(Join(cwd, p))
}

// Rel returns the path of to relative to from, both resolved against cwd.
// Equal paths yield ".". Paths on different drives yield the absolute target.
func Rel(cwd, from, to string) string {
	from = Abs(cwd, from)
	to = Abs(cwd, to)

	if volume(from) != volume(to) {
		return to
	}

	fromParts := split(from)
	toParts := split(to)

	i := 0
	for i < len(fromParts) && i < len(toParts) && fromParts[i] == toParts[i] {
		i++
	}

	rel := make([]string, 0, len(fromParts)-i+len(toParts)-i)
	for range fromParts[i:] {
		rel = append(rel, "..")
	}
	rel = append(rel, toParts[i:]...)

	if len(rel) == 0 {
		return "."
	}
	return strings.Join(rel, "/")
}

func volume(p string) string {
	if len(p) >= 2 && isLetter(p[0]) && p[1] == ':' {
		return strings.ToUpper(p[:2])
	}
	return ""
}

func split(p string) []string {
	p = strings.TrimPrefix(p[len(volume(p)):], "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Relativizer memoizes Rel for a fixed working directory. It is safe for
// concurrent use.
type Relativizer struct {
	cwd string

	mu   sync.Mutex
	memo map[[2]string]string
}

// NewRelativizer creates a memo anchored at cwd.
func NewRelativizer(cwd string) *Relativizer {
	return &Relativizer{
		cwd:  Normalize(cwd),
		memo: make(map[[2]string]string),
	}
}

// Cwd returns the directory relative paths are resolved against.
func (r *Relativizer) Cwd() string {
	return r.cwd
}

// Rel is the memoized form of the package-level Rel.
func (r *Relativizer) Rel(from, to string) string {
	key := [2]string{from, to}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rel, ok := r.memo[key]; ok {
		return rel
	}

	rel := Rel(r.cwd, from, to)
	r.memo[key] = rel
	return rel
}

// Len returns the number of memoized pairs.
func (r *Relativizer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memo)
}
