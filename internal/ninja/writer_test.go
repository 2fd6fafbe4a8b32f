package ninja

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(f func(w *Writer)) string {
	var sb strings.Builder
	w := NewWriter(&sb)
	f(w)
	return sb.String()
}

func TestWriterStatements(t *testing.T) {
	tests := []struct {
		name   string
		input  func(w *Writer)
		output string
	}{
		{
			name:   "declare",
			input:  func(w *Writer) { w.Declare("cc", "gcc") },
			output: "cc = gcc\n",
		},
		{
			name:   "pool",
			input:  func(w *Writer) { w.Pool("link_pool", 4) },
			output: "pool link_pool\n    depth = 4\n",
		},
		{
			name: "rule",
			input: func(w *Writer) {
				w.Rule("cc", RuleParams{
					Command:     "$cc -MMD -MF $out.d -c $in -o $out",
					Description: "CC $out",
					Depfile:     "$out.d",
					Deps:        "gcc",
				})
			},
			output: "rule cc\n" +
				"    command = $cc -MMD -MF $out.d -c $in -o $out\n" +
				"    description = CC $out\n" +
				"    depfile = $out.d\n" +
				"    deps = gcc\n",
		},
		{
			name: "rule with pool and restat",
			input: func(w *Writer) {
				w.Rule("link", RuleParams{Command: "$ld $in -o $out", Pool: "link_pool", Restat: true})
			},
			output: "rule link\n" +
				"    command = $ld $in -o $out\n" +
				"    pool = link_pool\n" +
				"    restat = 1\n",
		},
		{
			name: "build",
			input: func(w *Writer) {
				w.Build(BuildParams{
					Rule:      "cc",
					Outputs:   []string{"obj/foo.o"},
					Inputs:    []string{"../../foo.c"},
					Implicit:  []string{"gen.h"},
					OrderOnly: []string{"libbar.a"},
					Variables: []Variable{{Name: "cflags", Value: "-O2"}},
				})
			},
			output: "build obj/foo.o: cc ../../foo.c | gen.h || libbar.a\n    cflags = -O2\n",
		},
		{
			name: "build escapes paths",
			input: func(w *Writer) {
				w.Build(BuildParams{Rule: "copy", Outputs: []string{"a b"}, Inputs: []string{"c:d", "$x"}})
			},
			output: "build a$ b: copy c$:d $$x\n",
		},
		{
			name:   "subninja",
			input:  func(w *Writer) { w.Subninja("obj/src/foo.ninja") },
			output: "subninja obj/src/foo.ninja\n",
		},
		{
			name:   "phony",
			input:  func(w *Writer) { w.Phony("all", "foo", "libbar.a") },
			output: "build all: phony foo libbar.a\n",
		},
		{
			name:   "default",
			input:  func(w *Writer) { w.Default("all") },
			output: "default all\n",
		},
		{
			name: "section",
			input: func(w *Writer) {
				w.Section("rules")
				w.Declare("a", "b")
				w.SectionEnd()
			},
			output: "# rules\na = b\n\n",
		},
		{
			name: "blank lines collapse",
			input: func(w *Writer) {
				w.BlankLine()
				w.BlankLine()
			},
			output: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.output, render(tt.input))
		})
	}
}

func TestBuildWraps(t *testing.T) {
	var inputs []string
	for i := 0; i < 12; i++ {
		inputs = append(inputs, "obj/src/some_long_object_name.o")
	}

	out := render(func(w *Writer) {
		w.Build(BuildParams{Rule: "link", Outputs: []string{"foo"}, Inputs: inputs})
	})

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Greater(t, len(lines), 1)
	for i, line := range lines {
		assert.LessOrEqual(t, len(line), lineWidth, "line %d too long: %q", i, line)
		if i < len(lines)-1 {
			assert.True(t, strings.HasSuffix(line, " $"), "line %d lacks continuation", i)
		}
		if i > 0 {
			assert.True(t, strings.HasPrefix(line, "        "), "line %d not indented", i)
		}
	}
	assert.True(t, strings.HasPrefix(lines[0], "build foo: link"))
}

func TestComment(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"rules", "# rules\n"},
		{"first\nsecond", "# first\n# second\n"},
		{"  padded  \n\nafter blank", "# padded\n#\n# after blank\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.output, render(func(w *Writer) { w.Comment(tt.input) }), "Comment(%q)", tt.input)
	}
}

func TestDefaultWraps(t *testing.T) {
	var targets []string
	for i := 0; i < 10; i++ {
		targets = append(targets, "out/Default/obj/some_target_output")
	}

	out := render(func(w *Writer) { w.Default(targets...) })

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "default out/Default/obj/some_target_output out/Default/obj/some_target_output $", lines[0])
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "        out/"), "continuation %q", line)
		assert.LessOrEqual(t, len(line), lineWidth)
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "cd ../.. && echo $$HOME", Escape("cd ../.. && echo $HOME"))
	assert.Equal(t, "a$ b$:c$$d", EscapePath("a b:c$d"))
}

type failingWriter struct{ calls int }

func (f *failingWriter) WriteString(string) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestStickyError(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw)

	w.Declare("a", "b")
	w.Declare("c", "d")
	w.Subninja("x.ninja")

	assert.EqualError(t, w.Err(), "disk full")
	assert.Equal(t, 1, fw.calls)
}
