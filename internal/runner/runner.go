// Package runner invokes the downstream build tool on generated build files.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/generator"
	"github.com/node4good/gypninja/internal/logger"
)

const (
	// DefaultNinja is the build tool looked up on PATH
	DefaultNinja = "ninja"

	// DefaultFallback is the executor used when ninja is unusable
	DefaultFallback = "samu"
)

// Commander interface for testing
type Commander interface {
	Run() error
	Output() ([]byte, error)
}

// Runner runs ninja, or the fallback executor when ninja is unusable.
type Runner struct {
	// NinjaPath is the ninja binary, resolved through PATH
	NinjaPath string

	// Fallback is a command line, split shell-style
	Fallback string

	log *zap.SugaredLogger

	execCommand func(ctx context.Context, name string, args ...string) Commander
	lookPath    func(file string) (string, error)

	warnOnce sync.Once
}

// New creates a runner. Empty arguments select the defaults.
func New(ninjaPath, fallback string) *Runner {
	if ninjaPath == "" {
		ninjaPath = DefaultNinja
	}
	if fallback == "" {
		fallback = DefaultFallback
	}

	return &Runner{
		NinjaPath: ninjaPath,
		Fallback:  fallback,
		log:       logger.ComponentLogger("runner"),
		execCommand: func(ctx context.Context, name string, args ...string) Commander {
			return exec.CommandContext(ctx, name, args...)
		},
		lookPath: exec.LookPath,
	}
}

// Probe checks that ninja is installed and recent enough to read the
// generated files.
func (r *Runner) Probe(ctx context.Context) (*semver.Version, error) {
	path, err := r.lookPath(r.NinjaPath)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "ninja binary %q not found", r.NinjaPath), errors.ErrEnvironment)
	}

	out, err := r.execCommand(ctx, path, "--version").Output()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to run %s --version", path), errors.ErrEnvironment)
	}

	return checkVersion(string(bytes.TrimSpace(out)))
}

// checkVersion parses a ninja --version line and enforces the version the
// master file requires.
func checkVersion(raw string) (*semver.Version, error) {
	// Development builds append a suffix such as ".git"
	raw = strings.TrimSuffix(raw, ".git")

	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "unrecognized ninja version %q", raw), errors.ErrEnvironment)
	}

	c, err := semver.NewConstraint(">= " + generator.RequiredNinjaVersion)
	if err != nil {
		return nil, err
	}

	if !c.Check(v) {
		return nil, errors.WithHintf(
			errors.Environmentf("ninja %s is older than the required %s", v, generator.RequiredNinjaVersion),
			"upgrade ninja from https://ninja-build.org")
	}

	return v, nil
}
