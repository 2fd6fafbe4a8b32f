package generator

import (
	"context"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/ninja"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/utils"
)

// file is a rendered build file, not yet written.
type file struct {
	path string
	data []byte
}

// configuration assembles the build files of one configuration.
type configuration struct {
	name  string
	graph *gyp.Graph
	opts  Options

	policy    platform.Policy
	rel       *paths.Relativizer
	configDir string
	log       *zap.SugaredLogger

	targets []*target
}

func newConfiguration(name string, graph *gyp.Graph, opts Options, rel *paths.Relativizer, outDir string) *configuration {
	return &configuration{
		name:      name,
		graph:     graph,
		opts:      opts,
		policy:    opts.Policy,
		rel:       rel,
		configDir: paths.Join(outDir, name),
		log:       opts.Logger.With(logger.FieldConfiguration, name),
	}
}

// master is the path of the master build file.
func (c *configuration) master() string {
	return paths.Join(c.configDir, "build.ninja")
}

func (c *configuration) newTarget(index int, spec *gyp.TargetSpec) (*target, error) {
	ref := utils.ParseTarget(spec.Target)

	settings, err := spec.Resolve(c.name)
	if err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(settings.Dependencies))
	for _, dep := range settings.Dependencies {
		name := utils.ParseTarget(dep).String()
		if _, ok := c.graph.Lookup(name); !ok {
			return nil, errors.Configurationf("target %s (%s), configuration %s: unknown dependency %s",
				ref.Name, ref.Toolset, c.name, dep)
		}
		deps = append(deps, name)
	}

	srcDir := paths.Dir(ref.BuildFile)
	intPostfix := c.rel.Rel(c.opts.TopDir, srcDir)

	obj := "obj"
	if ref.Toolset != utils.ToolsetTarget {
		obj += "." + ref.Toolset
	}
	objDir := paths.Join(c.configDir, obj, intPostfix)

	return &target{
		index:    index,
		name:     spec.Target,
		ref:      ref,
		settings: settings,
		deps:     deps,
		policy:   c.policy,
		exp: &expander{
			policy:     c.policy,
			rel:        c.rel,
			config:     c.name,
			configDir:  c.configDir,
			srcDir:     srcDir,
			intPostfix: intPostfix,
		},
		objDir:   objDir,
		filename: paths.Join(objDir, ref.Name) + ".ninja",
	}, nil
}

// render produces every file of the configuration. Nothing is written.
func (c *configuration) render(ctx context.Context) ([]file, error) {
	c.targets = make([]*target, len(c.graph.Targets))
	owners := make(map[string]*target, len(c.graph.Targets))
	for i := range c.graph.Targets {
		t, err := c.newTarget(i, &c.graph.Targets[i])
		if err != nil {
			return nil, err
		}

		// Same directory, name and toolset means the same build file and objects.
		if other, dup := owners[t.filename]; dup {
			return nil, errors.WithHint(
				errors.Configurationf("targets %s and %s, configuration %s: both write %s",
					other.name, t.name, c.name, t.filename),
				"rename one of the targets or move it to another directory")
		}
		owners[t.filename] = t
		c.targets[i] = t
	}

	if err := newResolver(c.targets).resolveAll(c.targets); err != nil {
		return nil, err
	}

	files := make([]file, len(c.targets)+1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Jobs)
	for i, t := range c.targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var sb strings.Builder
			w := ninja.NewWriter(&sb)
			t.render(w)
			if err := w.Err(); err != nil {
				return t.fail(err)
			}

			files[i+1] = file{path: t.filename, data: []byte(sb.String())}
			c.log.Debugw("Rendered target", logger.FieldTarget, t.ref.Name, logger.FieldToolset, t.ref.Toolset)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	master, err := c.renderMaster()
	if err != nil {
		return nil, err
	}
	files[0] = file{path: c.master(), data: master}

	return files, nil
}

func (c *configuration) renderMaster() ([]byte, error) {
	var sb strings.Builder
	w := ninja.NewWriter(&sb)

	w.Declare("ninja_required_version", RequiredNinjaVersion)
	w.BlankLine()

	c.variables(w)
	c.rulesAndTargets(w)
	c.defaults(w)

	if err := w.Err(); err != nil {
		return nil, errors.Wrapf(err, "configuration %s", c.name)
	}
	return []byte(sb.String()), nil
}

// representative is the first target declaring make_global_settings.
func (c *configuration) representative() gyp.GlobalSettings {
	for _, t := range c.targets {
		if len(t.settings.MakeGlobalSettings) > 0 {
			return t.settings.MakeGlobalSettings
		}
	}
	return nil
}

// crossCompile reports whether host toolchain variables are declared.
func (c *configuration) crossCompile() bool {
	if c.opts.CrossCompile || crossCompileRequested(c.opts.Env) {
		return true
	}
	for _, t := range c.targets {
		if t.ref.Toolset == utils.ToolsetHost {
			return true
		}
	}
	return false
}

func (c *configuration) variables(w *ninja.Writer) {
	w.Section("variables")

	r := &toolchainResolver{
		policy:     c.policy,
		env:        c.opts.Env,
		global:     c.representative(),
		topDir:     c.opts.TopDir,
		targetArch: c.opts.TargetArch,
	}

	tc, extra := r.target()
	for _, v := range extra {
		w.Declare(v.Name, v.Value)
	}
	for _, v := range tc.variables("") {
		w.Declare(v.Name, v.Value)
	}

	if c.crossCompile() {
		for _, v := range r.host(tc).variables("_host") {
			w.Declare(v.Name, v.Value)
		}
	}

	w.SectionEnd()
}

func (c *configuration) rulesAndTargets(w *ninja.Writer) {
	useCxx := false
	for _, t := range c.targets {
		useCxx = useCxx || t.useCxx
	}

	w.Section("rules")
	w.Pool(linkPool, c.opts.LinkPoolDepth)
	c.policy.WriteRules(w, platform.RuleOptions{UseCxx: useCxx, LinkPool: linkPool})
	w.SectionEnd()

	w.Section("targets")
	for _, t := range c.targets {
		w.Subninja(t.exp.Rel(t.filename))
	}
	w.SectionEnd()
}

// defaults builds the outputs of every target declared in a requested
// build file, and of their direct dependencies.
func (c *configuration) defaults(w *ninja.Writer) {
	byName := make(map[string]*target, len(c.targets))
	for _, t := range c.targets {
		byName[t.name] = t
	}

	var all []string
	for _, buildFile := range c.graph.BuildFiles {
		buildFile = paths.Normalize(buildFile)

		for _, t := range c.targets {
			if paths.Normalize(t.ref.BuildFile) != buildFile {
				continue
			}

			all = append(all, t.output...)
			for _, dep := range t.deps {
				all = append(all, byName[dep].output...)
			}
		}
	}

	all = utils.Unique(all)
	sort.Strings(all)

	w.Section("defaults")
	if c.outputs(defaultAlias) {
		// A target owns the alias, so name the outputs directly.
		if len(all) > 0 {
			w.Default(all...)
		}
	} else {
		w.Phony(defaultAlias, all...)
		w.Default(defaultAlias)
	}
	w.SectionEnd()
}

// outputs reports whether any target produces path.
func (c *configuration) outputs(path string) bool {
	for _, t := range c.targets {
		if slices.Contains(t.output, path) {
			return true
		}
	}
	return false
}
