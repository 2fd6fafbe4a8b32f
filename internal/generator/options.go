// Package generator compiles a resolved target graph into ninja build files:
// one file per target and one master file per configuration.
package generator

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/sys"
)

const (
	// DefaultOutputDir is the output subdirectory under the generator output.
	DefaultOutputDir = "out"

	// DefaultLinkPoolDepth bounds concurrent link steps.
	DefaultLinkPoolDepth = 4

	// RequiredNinjaVersion is declared by every master file.
	RequiredNinjaVersion = "1.1"

	linkPool = "link_pool"

	// defaultAlias names the default build set in the master file.
	defaultAlias = "all"
)

// Store records emitted files so unchanged files are not rewritten and files
// that are no longer generated can be removed.
type Store interface {
	WriteIfChanged(fsys sys.FS, path string, data []byte, configuration string) (bool, error)
	Prune(fsys sys.FS, configuration string, keep []string) ([]string, error)
}

// Options control a generator run. Zero values select the defaults.
type Options struct {
	TopDir          string
	GeneratorOutput string
	OutputDir       string
	TargetArch      string
	CrossCompile    bool

	// Jobs bounds concurrent per-target rendering.
	Jobs          int
	LinkPoolDepth int

	// Configurations restricts generation to the named configurations.
	Configurations []string

	Policy platform.Policy
	Env    sys.Env
	FS     sys.FS
	Store  Store
	Logger *zap.SugaredLogger
}

func (o Options) withDefaults() (Options, error) {
	if o.Env == nil {
		o.Env = sys.OSEnv{}
	}
	if o.FS == nil {
		o.FS = sys.OSFS{}
	}
	if o.Policy == nil {
		o.Policy = platform.New(o.Env.Platform(), platform.Options{
			Windows: platform.EnvToolchain{Env: o.Env},
		})
	}
	if o.Logger == nil {
		o.Logger = logger.ComponentLogger("generator")
	}
	if o.TopDir == "" {
		o.TopDir = "."
	}
	if o.GeneratorOutput == "" {
		o.GeneratorOutput = "."
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Jobs == 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.LinkPoolDepth == 0 {
		o.LinkPoolDepth = DefaultLinkPoolDepth
	}

	if o.Jobs < 1 {
		return o, errors.Configurationf("jobs must be at least 1, got %d", o.Jobs)
	}
	if o.LinkPoolDepth < 1 {
		return o, errors.Configurationf("link pool depth must be at least 1, got %d", o.LinkPoolDepth)
	}
	return o, nil
}

// Result describes the files of a run.
type Result struct {
	Configurations []ConfigResult
}

// ConfigResult describes the files of one configuration.
type ConfigResult struct {
	Name      string
	ConfigDir string
	Master    string
	Files     []string
	// Changed lists files whose content differed from what was on disk.
	Changed []string
	Pruned  []string
}

// Changed reports whether any file of any configuration was rewritten.
func (r *Result) Changed() bool {
	for _, c := range r.Configurations {
		if len(c.Changed) > 0 || len(c.Pruned) > 0 {
			return true
		}
	}
	return false
}
