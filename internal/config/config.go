package config

import (
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/viper"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/sys"
)

// Default configuration values
const (
	DefaultGeneratorOutput  = "."
	DefaultOutputDir        = "out"
	DefaultLinkPoolDepth    = 4
	DefaultNinjaPath        = "ninja"
	DefaultFallbackExecutor = "samu"
	DefaultVerbose          = false
)

// Platforms lists the platform names the generator targets.
var Platforms = []string{"linux", "darwin", "win32", "freebsd", "openbsd", "sunos"}

// Holds the configuration options for gyp-ninja
type Config struct {
	// Target graph document (YAML or JSON)
	GraphFile string

	// Directory the output directory is created under
	GeneratorOutput string

	// Output directory holding one directory per configuration
	OutputDir string

	// Top-level source directory object paths are computed from
	TopLevelDir string

	// Platform policy (linux, darwin, win32, ...)
	Platform string

	// Host and target architectures
	Arch       string
	TargetArch string

	// Always declare host toolchain variables
	CrossCompile bool

	// Configurations to generate; empty means all
	Configurations []string

	// Concurrent target renders
	Jobs int

	// Concurrent link steps
	LinkPoolDepth int

	// Write every file instead of consulting the manifest
	NoCache bool

	// Build tool and the executor used when it is unusable
	NinjaPath        string
	FallbackExecutor string

	// Enable verbose output
	Verbose bool

	// Log as JSON
	JSONLogs bool

	// Keep regenerating when the graph file changes
	Watch bool
}

func Load(graphFile string) (*Config, error) {
	cfg := &Config{
		GraphFile:        graphFile,
		GeneratorOutput:  viper.GetString("generator_output"),
		OutputDir:        viper.GetString("output_dir"),
		TopLevelDir:      viper.GetString("toplevel_dir"),
		Platform:         viper.GetString("platform"),
		Arch:             viper.GetString("arch"),
		TargetArch:       viper.GetString("target_arch"),
		CrossCompile:     viper.GetBool("cross_compile"),
		Configurations:   viper.GetStringSlice("configurations"),
		Jobs:             viper.GetInt("jobs"),
		LinkPoolDepth:    viper.GetInt("link_pool_depth"),
		NoCache:          viper.GetBool("no_cache"),
		NinjaPath:        viper.GetString("ninja_path"),
		FallbackExecutor: viper.GetString("fallback_executor"),
		Verbose:          viper.GetBool("verbose"),
		JSONLogs:         viper.GetBool("json_logs"),
		Watch:            viper.GetBool("watch"),
	}

	// Apply defaults if not set
	if cfg.GeneratorOutput == "" {
		cfg.GeneratorOutput = DefaultGeneratorOutput
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.TopLevelDir == "" && graphFile != "" {
		cfg.TopLevelDir = filepath.Dir(graphFile)
	}

	if cfg.Platform == "" {
		cfg.Platform = sys.PlatformName(runtime.GOOS)
	}

	if cfg.Arch == "" {
		cfg.Arch = sys.ArchName(runtime.GOARCH)
	}

	if cfg.Jobs == 0 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}

	if cfg.LinkPoolDepth == 0 {
		cfg.LinkPoolDepth = DefaultLinkPoolDepth
	}

	if cfg.NinjaPath == "" {
		cfg.NinjaPath = DefaultNinjaPath
	}

	if cfg.FallbackExecutor == "" {
		cfg.FallbackExecutor = DefaultFallbackExecutor
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// Accept the Go spelling of the Solaris platform
	if c.Platform == "solaris" {
		c.Platform = "sunos"
	}

	if !slices.Contains(Platforms, c.Platform) {
		return errors.WithHintf(
			errors.Configurationf("unknown platform %q", c.Platform),
			"supported platforms: %v", Platforms)
	}

	if c.Platform == "win32" && c.NinjaPath == DefaultNinjaPath {
		c.NinjaPath = DefaultNinjaPath + ".exe"
	}

	if c.Jobs < 1 {
		return errors.Configurationf("jobs must be at least 1, got %d", c.Jobs)
	}

	if c.LinkPoolDepth < 1 {
		return errors.Configurationf("link pool depth must be at least 1, got %d", c.LinkPoolDepth)
	}

	// Resolve paths to clean slash form
	c.GraphFile = cleanPath(c.GraphFile)
	c.GeneratorOutput = cleanPath(c.GeneratorOutput)
	c.OutputDir = cleanPath(c.OutputDir)
	c.TopLevelDir = cleanPath(c.TopLevelDir)

	return nil
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}

	return filepath.ToSlash(filepath.Clean(p))
}
