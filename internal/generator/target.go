package generator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/utils"
)

var (
	compilable   = regexp.MustCompile(`\.(c|cc|cpp|cxx|s|S|asm)$`)
	cxxSource    = regexp.MustCompile(`\.(cc|cpp|cxx)$`)
	sharedOutput = regexp.MustCompile(`\.(dll|dylib|so)$`)
	objectOutput = regexp.MustCompile(`\.(o|obj)$`)
	linkOutput   = regexp.MustCompile(`\.(o|a|obj|lib)$`)
)

// target compiles one (target, toolset) pair of one configuration into its
// own build file.
type target struct {
	index    int
	name     string
	ref      utils.QualifiedTarget
	settings gyp.Settings
	deps     []string

	policy   platform.Policy
	exp      *expander
	objDir   string
	filename string

	// Filled in by the resolver before rendering.
	output     []string
	depOutputs []string
	forwarded  []string

	useCxx bool
}

// fail attaches the target, toolset and configuration to err.
func (t *target) fail(err error) error {
	return errors.Wrapf(err, "target %s (%s), configuration %s", t.ref.Name, t.ref.Toolset, t.exp.config)
}

// productName computes the primary artifact name. Type none has none.
func (t *target) productName() (string, error) {
	affix, ok := t.policy.Naming().Lookup(t.settings.Type)
	if !ok {
		return "", errors.Configurationf("target %s has unsupported type %q", t.name, t.settings.Type)
	}

	prefix, suffix := affix.Prefix, affix.Suffix
	name := t.ref.Name

	if t.settings.ProductPrefix != nil {
		prefix = *t.settings.ProductPrefix
	}
	if t.settings.ProductExtension != "" {
		suffix = "." + t.settings.ProductExtension
	}
	if t.settings.ProductName != nil {
		name = *t.settings.ProductName
	}

	out := name + suffix
	if prefix == "lib" && strings.HasPrefix(out, "lib") {
		out = out[len("lib"):]
	}

	if t.settings.Type == gyp.None {
		return "", nil
	}
	return prefix + out, nil
}

// ownOutputs are the primary artifact plus every action and copy output.
func (t *target) ownOutputs() ([]string, error) {
	var res []string

	product, err := t.productName()
	if err != nil {
		return nil, err
	}
	if product != "" {
		res = append(res, product)
	}

	for _, action := range t.settings.Actions {
		for _, o := range action.Outputs {
			res = append(res, t.exp.SrcPath(o))
		}
	}

	for _, c := range t.settings.Copies {
		dest := t.exp.SrcPath(c.Destination)
		for _, file := range c.Files {
			res = append(res, t.exp.join(dest, paths.Base(file)))
		}
	}

	return res, nil
}

// render writes the target's build file.
func (t *target) render(w *ninja.Writer) {
	t.vars(w)

	deps := t.actions(w)
	deps = append(deps, t.copies(w)...)
	deps = append(deps, t.depOutputs...)

	objs := t.objects(w, deps)
	t.result(w, objs, deps)
}

func (t *target) vars(w *ninja.Writer) {
	w.Section("variables")

	if t.ref.Toolset == utils.ToolsetHost {
		for _, tool := range toolNames {
			w.Declare(tool, "$"+tool+"_host")
		}
	}

	s := t.settings
	flags := t.policy.TargetFlags(s)

	includes := make([]string, 0, len(s.IncludeDirs))
	for _, dir := range s.IncludeDirs {
		includes = append(includes, "-I"+t.exp.SrcPath(dir))
	}

	defines := make([]string, 0, len(s.Defines))
	for _, d := range s.Defines {
		defines = append(defines, t.policy.EscapeDefine(d))
	}

	var libs []string
	for _, dep := range t.depOutputs {
		if sharedOutput.MatchString(dep) {
			libs = append(libs, dep)
		}
	}
	libs = append(libs, s.Libraries...)
	libs = append(libs, t.forwarded...)
	libs = t.policy.AdjustLibraries(utils.Unique(libs))

	for _, v := range []ninja.Variable{
		{Name: "ldflags", Value: t.prepare(flags.Ldflags)},
		{Name: "libs", Value: t.prepare(libs)},
		{Name: "cflags", Value: t.prepare(flags.Cflags)},
		{Name: "cflags_c", Value: t.prepare(flags.CflagsC)},
		{Name: "cflags_cc", Value: t.prepare(flags.CflagsCC)},
		{Name: "includes", Value: t.prepare(includes)},
		{Name: "defines", Value: t.prepare(defines)},
		{Name: "asmflags", Value: t.prepare(flags.Asmflags)},
	} {
		if v.Value != "" {
			w.Declare(v.Name, v.Value)
		}
	}

	w.SectionEnd()
}

func (t *target) prepare(list []string) string {
	expanded := make([]string, len(list))
	for i, v := range list {
		expanded[i] = t.exp.Expand(v)
	}
	return strings.TrimSpace(strings.Join(expanded, " "))
}

// actionRuleName makes a rule name unique across targets.
func (t *target) actionRuleName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	return sanitized + "_" + strconv.Itoa(t.index)
}

func (t *target) actions(w *ninja.Writer) []string {
	if len(t.settings.Actions) == 0 {
		return nil
	}

	w.Section("actions")

	base := t.exp.rel.Rel(t.exp.configDir, t.exp.srcDir)
	toBase := t.exp.rel.Rel(t.exp.srcDir, t.exp.configDir)

	var res []string
	for _, action := range t.settings.Actions {
		rule := t.actionRuleName(action.Name)

		w.Rule(rule, ninja.RuleParams{
			Command:     ninja.Escape(t.actionCommand(base, toBase, action.Command)),
			Description: ninja.Escape(action.Message),
		})

		inputs := make([]string, 0, len(action.Inputs))
		for _, in := range action.Inputs {
			inputs = append(inputs, t.exp.SrcPath(in))
		}
		outputs := make([]string, 0, len(action.Outputs))
		for _, out := range action.Outputs {
			outputs = append(outputs, t.exp.SrcPath(out))
		}

		w.Build(ninja.BuildParams{
			Rule:      rule,
			Outputs:   outputs,
			Inputs:    inputs,
			OrderOnly: t.depOutputs,
		})

		res = append(res, outputs...)
	}

	w.SectionEnd()
	return res
}

// actionCommand runs tokens from the target's source directory, with the
// product directory expressed relative to it.
func (t *target) actionCommand(base, toBase string, tokens []string) string {
	expanded := make([]string, len(tokens))
	for i, tok := range tokens {
		expanded[i] = t.exp.ExpandFrom(tok, toBase)
	}

	cmd := "cd " + t.policy.NativePath(base) + " " + t.policy.ShellAnd() + " " + strings.Join(expanded, " ")
	return t.policy.WrapCommand(cmd)
}

func (t *target) copies(w *ninja.Writer) []string {
	if len(t.settings.Copies) == 0 {
		return nil
	}

	w.Section("copies")

	var res []string
	for _, c := range t.settings.Copies {
		dest := t.exp.SrcPath(c.Destination)

		for _, file := range c.Files {
			output := t.exp.join(dest, paths.Base(file))

			w.Build(ninja.BuildParams{
				Rule:      "copy",
				Outputs:   []string{output},
				Inputs:    []string{t.exp.SrcPath(file)},
				OrderOnly: t.depOutputs,
			})

			res = append(res, output)
		}
	}

	w.SectionEnd()
	return res
}

func (t *target) objects(w *ninja.Writer, deps []string) []string {
	w.Section("objects")

	var objs []string
	for _, original := range t.settings.Sources {
		if !compilable.MatchString(original) {
			continue
		}

		source := t.exp.SrcPath(original)
		original = t.exp.Expand(original)

		cxx := cxxSource.MatchString(source)
		if cxx {
			t.useCxx = true
		}

		basename := t.ref.Name + "." + paths.TrimExt(paths.Base(original))

		asm := t.policy.IsAssembly(source)
		if asm {
			basename += "_asm.obj"
		} else {
			basename += t.policy.ObjectExt()
		}

		dir := ""
		if !paths.IsAbs(original) {
			dir = paths.Dir(original)
		}
		obj := t.exp.Rel(paths.Join(t.objDir, dir, basename))

		rule := "cc"
		switch {
		case asm:
			rule = "asm"
		case cxx:
			rule = "cxx"
		}

		w.Build(ninja.BuildParams{
			Rule:      rule,
			Outputs:   []string{obj},
			Inputs:    []string{source},
			OrderOnly: deps,
		})

		objs = append(objs, obj)
	}

	w.SectionEnd()
	return objs
}

func (t *target) resultRule() string {
	switch t.settings.Type {
	case gyp.StaticLibrary:
		return "alink"
	case gyp.SharedLibrary, gyp.LoadableModule:
		return "solink"
	case gyp.Executable:
		return "link"
	}
	return ""
}

// linkable reports whether file is a link input. Archives never go into
// other archives.
func (t *target) linkable(file string) bool {
	if t.settings.Type == gyp.StaticLibrary {
		return objectOutput.MatchString(file)
	}
	return linkOutput.MatchString(file)
}

func (t *target) result(w *ninja.Writer, objs, deps []string) {
	w.Section("result")

	if rule := t.resultRule(); rule != "" && len(t.output) > 0 {
		var inputs, implicit []string
		for _, file := range append(append([]string(nil), objs...), deps...) {
			if t.linkable(file) {
				inputs = append(inputs, file)
			} else {
				implicit = append(implicit, file)
			}
		}

		w.Build(ninja.BuildParams{
			Rule:      rule,
			Outputs:   t.output[:1],
			Inputs:    inputs,
			Implicit:  utils.Unique(implicit),
			OrderOnly: deps,
		})
	}

	w.SectionEnd()
}
