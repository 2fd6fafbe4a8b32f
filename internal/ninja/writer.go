// Package ninja writes build files in the ninja manifest format.
package ninja

import (
	"io"
	"strconv"
	"strings"
)

const (
	// lineWidth bounds build and default lines, continuation marker included.
	lineWidth = 80

	scopeIndent        = "    "
	continuationIndent = "        "
)

var (
	commandEscaper = strings.NewReplacer(
		"$", "$$")
	pathEscaper = strings.NewReplacer(
		"$", "$$",
		"\n", "$\n",
		" ", "$ ",
		":", "$:")
)

// Escape escapes a string for use in a variable value or rule command.
func Escape(s string) string {
	return commandEscaper.Replace(s)
}

// EscapePath escapes a path for use in a build or default statement.
func EscapePath(s string) string {
	return pathEscaper.Replace(s)
}

// RuleParams are the bindings of a rule statement.
type RuleParams struct {
	Command     string
	Description string
	Depfile     string
	Deps        string
	Pool        string
	Restat      bool
}

// BuildParams describe a build statement. Paths are unescaped.
type BuildParams struct {
	Rule      string
	Outputs   []string
	Inputs    []string
	Implicit  []string
	OrderOnly []string
	Variables []Variable
}

// Variable is a name = value binding.
type Variable struct {
	Name  string
	Value string
}

// Writer emits ninja statements. The first write error is kept and every
// later call becomes a no-op; check Err when done.
type Writer struct {
	writer io.StringWriter
	err    error

	justDidBlankLine bool // true if the last operation was a BlankLine
}

// NewWriter returns a Writer on w.
func NewWriter(w io.StringWriter) *Writer {
	return &Writer{writer: w}
}

// Err returns the first error encountered.
func (n *Writer) Err() error {
	return n.err
}

func (n *Writer) write(s string) {
	if n.err != nil {
		return
	}
	_, n.err = n.writer.WriteString(s)
}

// Comment writes comment as "#" lines, one per line of input.
func (n *Writer) Comment(comment string) {
	n.justDidBlankLine = false

	for _, line := range strings.Split(comment, "\n") {
		n.write(strings.TrimRight("# "+strings.TrimSpace(line), " ") + "\n")
	}
}

// Section opens a named group of statements.
func (n *Writer) Section(name string) {
	n.Comment(name)
}

// SectionEnd closes the current group.
func (n *Writer) SectionEnd() {
	n.BlankLine()
}

// Declare writes a top-level variable binding. The value is written as is.
func (n *Writer) Declare(name, value string) {
	n.justDidBlankLine = false
	n.write(name + " = " + value + "\n")
}

func (n *Writer) scopedDeclare(name, value string) {
	n.write(scopeIndent + name + " = " + value + "\n")
}

// Pool declares a pool of the given depth.
func (n *Writer) Pool(name string, depth int) {
	n.justDidBlankLine = false
	n.writeStatement("pool", name)
	n.scopedDeclare("depth", strconv.Itoa(depth))
}

// Rule declares a rule.
func (n *Writer) Rule(name string, params RuleParams) {
	n.justDidBlankLine = false
	n.writeStatement("rule", name)

	n.scopedDeclare("command", params.Command)
	if params.Description != "" {
		n.scopedDeclare("description", params.Description)
	}
	if params.Depfile != "" {
		n.scopedDeclare("depfile", params.Depfile)
	}
	if params.Deps != "" {
		n.scopedDeclare("deps", params.Deps)
	}
	if params.Pool != "" {
		n.scopedDeclare("pool", params.Pool)
	}
	if params.Restat {
		n.scopedDeclare("restat", "1")
	}
}

// Build writes a build statement, wrapping long lines.
func (n *Writer) Build(params BuildParams) {
	n.justDidBlankLine = false

	words := make([]string, 0, 4+len(params.Outputs)+len(params.Inputs)+len(params.Implicit)+len(params.OrderOnly))
	words = append(words, "build")
	words = appendPaths(words, params.Outputs)
	words[len(words)-1] += ":"
	words = append(words, params.Rule)
	words = appendPaths(words, params.Inputs)

	if len(params.Implicit) > 0 {
		words = append(words, "|")
		words = appendPaths(words, params.Implicit)
	}
	if len(params.OrderOnly) > 0 {
		words = append(words, "||")
		words = appendPaths(words, params.OrderOnly)
	}

	n.write(wrap(words))

	for _, v := range params.Variables {
		n.scopedDeclare(v.Name, v.Value)
	}
}

func appendPaths(words, paths []string) []string {
	for _, p := range paths {
		words = append(words, EscapePath(p))
	}
	return words
}

// Phony writes a phony build statement aliasing inputs as name.
func (n *Writer) Phony(name string, inputs ...string) {
	n.Build(BuildParams{Rule: "phony", Outputs: []string{name}, Inputs: inputs})
}

// Subninja includes another build file with its own variable scope.
func (n *Writer) Subninja(file string) {
	n.justDidBlankLine = false
	n.writeStatement("subninja", EscapePath(file))
}

// Default declares the targets built when none are named.
func (n *Writer) Default(targets ...string) {
	n.justDidBlankLine = false
	n.write(wrap(appendPaths([]string{"default"}, targets)))
}

// BlankLine writes an empty line unless the previous operation did.
func (n *Writer) BlankLine() {
	if !n.justDidBlankLine {
		n.justDidBlankLine = true
		n.write("\n")
	}
}

func (n *Writer) writeStatement(directive, name string) {
	n.write(directive + " " + name + "\n")
}

// wrap joins words with single spaces into one statement line. A word that
// would run past the width starts a continuation line instead, so the " $"
// marker always fits.
func wrap(words []string) string {
	const limit = lineWidth - len(" $")

	var sb strings.Builder
	col := 0
	for i, word := range words {
		switch {
		case i == 0:
		case col+1+len(word) > limit:
			sb.WriteString(" $\n" + continuationIndent)
			col = len(continuationIndent)
		default:
			sb.WriteByte(' ')
			col++
		}
		sb.WriteString(word)
		col += len(word)
	}
	sb.WriteByte('\n')

	return sb.String()
}
