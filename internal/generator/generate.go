package generator

import (
	"context"
	"time"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/sys"
)

// Generate writes the build files of every selected configuration of graph.
// All configurations are rendered before the first file is written, so an
// error leaves the previous build files untouched.
func Generate(ctx context.Context, graph *gyp.Graph, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if graph.TopLevelDir != "" {
		opts.TopDir = graph.TopLevelDir
	}
	if err := graph.Index(); err != nil {
		return nil, err
	}

	names, err := selectConfigurations(graph.ConfigurationNames(), opts.Configurations)
	if err != nil {
		return nil, err
	}

	cwd, err := opts.Env.Getwd()
	if err != nil {
		return nil, errors.IO(err, ".")
	}
	rel := paths.NewRelativizer(cwd)
	outDir := OutDir(rel, opts.GeneratorOutput, opts.OutputDir)

	start := time.Now()

	configs := make([]*configuration, len(names))
	rendered := make([][]file, len(names))
	for i, name := range names {
		configs[i] = newConfiguration(name, graph, opts, rel, outDir)
		if rendered[i], err = configs[i].render(ctx); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for i, c := range configs {
		cr, err := c.write(rendered[i])
		if err != nil {
			return res, err
		}
		res.Configurations = append(res.Configurations, cr)

		c.log.Infow("Generated build files",
			logger.FieldPath, cr.Master,
			logger.FieldCount, len(cr.Files),
			"changed", len(cr.Changed),
		)
	}

	opts.Logger.Debugw("Generation finished",
		logger.FieldCount, len(names),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// OutDir is the directory holding one subdirectory per configuration.
func OutDir(rel *paths.Relativizer, generatorOutput, outputDir string) string {
	if generatorOutput == "" {
		generatorOutput = "."
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if !paths.IsAbs(generatorOutput) {
		generatorOutput = rel.Rel(".", generatorOutput)
	}
	return paths.Normalize(paths.Join(generatorOutput, outputDir))
}

func selectConfigurations(all, wanted []string) ([]string, error) {
	if len(wanted) == 0 {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	for _, name := range all {
		known[name] = true
	}

	for _, name := range wanted {
		if !known[name] {
			return nil, errors.WithHintf(
				errors.Configurationf("unknown configuration %q", name),
				"available configurations: %v", all)
		}
	}
	return wanted, nil
}

func (c *configuration) write(files []file) (ConfigResult, error) {
	cr := ConfigResult{
		Name:      c.name,
		ConfigDir: c.configDir,
		Master:    c.master(),
	}

	for _, f := range files {
		changed := true
		if c.opts.Store != nil {
			var err error
			if changed, err = c.opts.Store.WriteIfChanged(c.opts.FS, f.path, f.data, c.name); err != nil {
				return cr, errors.Wrapf(errors.IO(err, f.path), "configuration %s", c.name)
			}
		} else if err := sys.WriteFileAtomic(c.opts.FS, f.path, f.data, 0o644); err != nil {
			return cr, errors.Wrapf(errors.IO(err, f.path), "configuration %s", c.name)
		}

		cr.Files = append(cr.Files, f.path)
		if changed {
			cr.Changed = append(cr.Changed, f.path)
		}
	}

	if c.opts.Store != nil {
		pruned, err := c.opts.Store.Prune(c.opts.FS, c.name, cr.Files)
		if err != nil {
			return cr, errors.Wrapf(err, "configuration %s", c.name)
		}
		cr.Pruned = pruned
	}

	return cr, nil
}
