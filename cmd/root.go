package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/node4good/gypninja/internal/codes"
	"github.com/node4good/gypninja/internal/config"
	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/version"
)

// errUsage marks errors caused by how the command was invoked
var errUsage = errors.New("usage error")

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gyp-ninja [flags] <graph-file>",
		Short: "Ninja build file generator for gyp",
		Long: `Generate ninja build files from a resolved gyp target graph.

One master build.ninja is written per configuration under
<generator-output>/<output-dir>/<configuration>, with one build file
per target beside the objects it produces.`,
		RunE:          runGenerate,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime),
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("json-logs", false, "Log as JSON")
	flags.StringP("generator-output", "o", "", "Directory the output directory is created under")
	flags.String("output-dir", "", "Output directory, relative to the generator output (default \"out\")")
	flags.String("toplevel-dir", "", "Top-level source directory (default: the graph file's directory)")
	flags.String("platform", "", "Target platform: linux, darwin, win32, freebsd, openbsd, solaris")
	flags.String("arch", "", "Host architecture")
	flags.String("target-arch", "", "Target architecture")
	flags.Bool("cross-compile", false, "Declare host toolchain variables")
	flags.StringSliceP("config", "c", nil, "Configuration to generate (repeatable; default all)")
	flags.IntP("jobs", "j", 0, "Targets rendered concurrently (default GOMAXPROCS)")
	flags.Int("link-pool-depth", 0, "Concurrent link steps (default 4)")
	flags.Bool("no-cache", false, "Always rewrite build files and keep stale ones")

	root.Flags().Bool("watch", false, "Regenerate whenever the graph file changes")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// exactArgs is cobra.ExactArgs with the usage mark
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return errors.Mark(err, errUsage)
		}
		return nil
	}
}

// exitCode maps err to the process exit code
func exitCode(err error) int {
	if errors.Is(err, errUsage) {
		return codes.Usage
	}

	return codes.FromError(err)
}

// setup loads the configuration for cmd and initializes logging from it
func setup(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(cmd, args)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(cfg.Verbose, cfg.JSONLogs); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logging")
	}

	return cfg, nil
}

func Execute() {
	err := rootCmd.Execute()
	logger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}

		os.Exit(exitCode(err))
	}
}

func init() {
	viper.SetDefault("verbose", config.DefaultVerbose)
}
