package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/node4good/gypninja/internal/cache"
	"github.com/node4good/gypninja/internal/config"
	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/generator"
	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/sys"
	"github.com/node4good/gypninja/internal/watch"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if !cfg.Watch {
		_, err := generate(ctx, cfg)
		return err
	}

	regenerate := func(ctx context.Context) error {
		_, err := generate(ctx, cfg)
		return err
	}

	if err := regenerate(ctx); err != nil {
		logger.Logger.Errorw("Generation failed", logger.FieldError, err)
	}

	return watch.Watch(ctx, []string{cfg.GraphFile}, watch.DefaultDebounce, regenerate)
}

// generate loads the graph file and writes the build files cfg selects
func generate(ctx context.Context, cfg *config.Config) (*generator.Result, error) {
	fsys := sys.OSFS{}
	env := sys.OSEnv{}

	graph, err := gyp.Load(fsys, cfg.GraphFile)
	if err != nil {
		return nil, err
	}

	opts := generator.Options{
		TopDir:          cfg.TopLevelDir,
		GeneratorOutput: cfg.GeneratorOutput,
		OutputDir:       cfg.OutputDir,
		TargetArch:      cfg.TargetArch,
		CrossCompile:    cfg.CrossCompile,
		Jobs:            cfg.Jobs,
		LinkPoolDepth:   cfg.LinkPoolDepth,
		Configurations:  cfg.Configurations,
		Policy:          platform.New(cfg.Platform, platform.Options{Windows: platform.EnvToolchain{Env: env}}),
		Env:             env,
		FS:              fsys,
		Logger:          logger.ComponentLogger("generator"),
	}

	if !cfg.NoCache {
		cwd, err := env.Getwd()
		if err != nil {
			return nil, errors.IO(err, ".")
		}

		outDir := generator.OutDir(paths.NewRelativizer(cwd), cfg.GeneratorOutput, cfg.OutputDir)
		c, err := cache.Open(outDir)
		if err != nil {
			return nil, err
		}
		defer c.Close()

		opts.Store = c
	}

	res, err := generator.Generate(ctx, graph, opts)
	if err != nil {
		return nil, err
	}

	for _, cr := range res.Configurations {
		logger.Logger.Infow("Wrote build files",
			logger.FieldConfiguration, cr.Name,
			logger.FieldPath, cr.Master,
			logger.FieldCount, len(cr.Changed),
			"pruned", len(cr.Pruned),
		)
	}

	return res, nil
}
