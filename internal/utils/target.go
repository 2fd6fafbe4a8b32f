package utils

import (
	"strings"
)

// Toolset names.
const (
	ToolsetTarget = "target"
	ToolsetHost   = "host"
)

// QualifiedTarget is a target reference of the form
// "<build file>:<name>#<toolset>".
type QualifiedTarget struct {
	BuildFile string
	Name      string
	Toolset   string
}

// ParseTarget splits a qualified target reference. The build file and the
// toolset are optional; a missing toolset reads as "target". Build files may
// carry a drive letter, so only the last ':' separates the name.
func ParseTarget(t string) QualifiedTarget {
	q := QualifiedTarget{Toolset: ToolsetTarget}

	if i := strings.LastIndex(t, "#"); i >= 0 {
		q.Toolset = t[i+1:]
		t = t[:i]
	}

	if i := strings.LastIndex(t, ":"); i >= 0 {
		q.BuildFile = t[:i]
		t = t[i+1:]
	}

	q.Name = t
	return q
}

// String formats the reference back into its qualified form.
func (q QualifiedTarget) String() string {
	var sb strings.Builder

	if q.BuildFile != "" {
		sb.WriteString(q.BuildFile)
		sb.WriteString(":")
	}

	sb.WriteString(q.Name)

	toolset := q.Toolset
	if toolset == "" {
		toolset = ToolsetTarget
	}

	sb.WriteString("#")
	sb.WriteString(toolset)
	return sb.String()
}

// Unique returns items without repeats, keeping first occurrences in order.
func Unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	res := make([]string, 0, len(items))

	for _, item := range items {
		if seen[item] {
			continue
		}

		seen[item] = true
		res = append(res, item)
	}

	return res
}
