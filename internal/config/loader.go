package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. GYP_NINJA_JOBS.
const EnvPrefix = "GYP_NINJA"

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"generator-output": "generator_output",
	"output-dir":       "output_dir",
	"toplevel-dir":     "toplevel_dir",
	"platform":         "platform",
	"arch":             "arch",
	"target-arch":      "target_arch",
	"cross-compile":    "cross_compile",
	"config":           "configurations",
	"jobs":             "jobs",
	"link-pool-depth":  "link_pool_depth",
	"no-cache":         "no_cache",
	"ninja":            "ninja_path",
	"fallback":         "fallback_executor",
	"verbose":          "verbose",
	"json-logs":        "json_logs",
	"watch":            "watch",
}

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load layers defaults, the global config file, the project config file,
// the environment and cmd's flags, later layers winning. args[0], when
// present, is the graph file.
func (l *Loader) Load(cmd *cobra.Command, args []string) (*Config, error) {
	graphFile := ""
	if len(args) > 0 {
		graphFile = args[0]
	}

	l.setupViperDefaults()
	if err := l.loadGlobalConfig(); err != nil {
		return nil, err
	}
	if err := l.loadLocalConfig(graphFile); err != nil {
		return nil, err
	}
	l.bindEnv()
	l.bindCommandFlags(cmd)

	return Load(graphFile)
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("generator_output", DefaultGeneratorOutput)
	viper.SetDefault("output_dir", DefaultOutputDir)
	viper.SetDefault("link_pool_depth", DefaultLinkPoolDepth)
	viper.SetDefault("ninja_path", DefaultNinjaPath)
	viper.SetDefault("fallback_executor", DefaultFallbackExecutor)
	viper.SetDefault("verbose", DefaultVerbose)
}

// loadGlobalConfig loads the user's configuration file
func (l *Loader) loadGlobalConfig() error {
	path := FindGlobalConfig()
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to read %s", path), errors.ErrConfiguration)
	}

	logger.ComponentLogger("config").Debugw("Loaded global config", logger.FieldPath, path)
	return nil
}

// loadLocalConfig loads the project configuration nearest to the graph file
func (l *Loader) loadLocalConfig(graphFile string) error {
	if graphFile == "" {
		return nil
	}

	abs, err := filepath.Abs(graphFile)
	if err != nil {
		return nil // Load reports unusable paths
	}

	path := FindLocalConfig(filepath.Dir(abs))
	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.MergeInConfig(); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to read %s", path), errors.ErrConfiguration)
	}

	logger.ComponentLogger("config").Debugw("Loaded local config", logger.FieldPath, path)
	return nil
}

// bindEnv reads GYP_NINJA_<KEY> overrides
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	for name, key := range flagKeys {
		if flag := lookupFlag(cmd, name); flag != nil {
			_ = viper.BindPFlag(key, flag)
		}
	}
}

// lookupFlag finds a local or inherited persistent flag
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}

	return cmd.InheritedFlags().Lookup(name)
}
