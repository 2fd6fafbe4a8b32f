package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/runner"
)

// builder runs the build of one configuration directory
type builder interface {
	Build(ctx context.Context, configDir string, targets []string) error
}

var newBuilder = func(ninjaPath, fallback string) builder {
	return runner.New(ninjaPath, fallback)
}

func newBuildCmd() *cobra.Command {
	build := &cobra.Command{
		Use:   "build [flags] <graph-file> [-- targets...]",
		Short: "Generate build files and run ninja",
		Long: `Generate build files, then run ninja in every generated configuration
directory. Targets after -- are passed to ninja; by default it builds "all".

When no usable ninja is installed the fallback executor runs instead.`,
		RunE:         runBuild,
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			graphArgs := len(args)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				graphArgs = dash
			}
			if graphArgs != 1 {
				return errors.Mark(errors.Newf("requires exactly one graph file, got %d", graphArgs), errUsage)
			}
			return nil
		},
	}

	build.Flags().String("ninja", "", "Ninja binary (default \"ninja\")")
	build.Flags().String("fallback", "", "Executor used when ninja is unusable (default \"samu\")")

	return build
}

func runBuild(cmd *cobra.Command, args []string) error {
	var targets []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		targets = args[dash:]
		args = args[:dash]
	}

	cfg, err := setup(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := generate(ctx, cfg)
	if err != nil {
		return err
	}

	b := newBuilder(cfg.NinjaPath, cfg.FallbackExecutor)
	for _, cr := range res.Configurations {
		if err := b.Build(ctx, cr.ConfigDir, targets); err != nil {
			return errors.Wrapf(err, "configuration %s", cr.Name)
		}
	}

	return nil
}
