package runner

import (
	"context"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/logger"
)

// exitCoder is satisfied by *exec.ExitError
type exitCoder interface {
	ExitCode() int
}

// BuildArgs builds the arguments that run configDir's master file
func BuildArgs(configDir string, targets []string) []string {
	args := []string{"-C", configDir}
	return append(args, targets...)
}

// Build runs the build of configDir. When ninja cannot be used the fallback
// executor runs with the same arguments.
func (r *Runner) Build(ctx context.Context, configDir string, targets []string) error {
	args := BuildArgs(configDir, targets)

	v, err := r.Probe(ctx)
	if err == nil {
		r.log.Debugw("Running ninja",
			logger.FieldBinary, r.NinjaPath,
			logger.FieldVersion, v.String(),
			logger.FieldPath, configDir,
		)
		return r.run(ctx, r.NinjaPath, args)
	}
	r.log.Debugw("Ninja probe failed", logger.FieldError, err)

	fallback, err := r.fallback()
	if err != nil {
		return err
	}

	r.warnOnce.Do(func() {
		r.log.Warnw("No usable native ninja binary found", logger.FieldBinary, r.NinjaPath)
		r.log.Warnw("Using fallback executor", logger.FieldBinary, fallback[0])
		r.log.Warn("Install ninja for fast incremental builds")
	})

	return r.run(ctx, fallback[0], append(append([]string(nil), fallback[1:]...), args...))
}

// fallback resolves the fallback executor command line
func (r *Runner) fallback() ([]string, error) {
	words, err := shellquote.Split(r.Fallback)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "invalid fallback executor %q", r.Fallback), errors.ErrConfiguration)
	}
	if len(words) == 0 {
		return nil, errors.Environmentf("no build executor available")
	}

	path, err := r.lookPath(words[0])
	if err != nil {
		return nil, errors.WithHint(
			errors.Environmentf("no build executor available: neither %s nor %s was found", r.NinjaPath, words[0]),
			"install ninja from https://ninja-build.org")
	}

	return append([]string{path}, words[1:]...), nil
}

// run executes a build tool with inherited standard streams
func (r *Runner) run(ctx context.Context, name string, args []string) error {
	c := r.execCommand(ctx, name, args...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr exitCoder
	if errors.As(err, &exitErr) {
		return errors.Buildf("%s exited with code %d", name, exitErr.ExitCode())
	}

	return errors.Mark(errors.Wrapf(err, "failed to run %s", name), errors.ErrEnvironment)
}
