package runner

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/node4good/gypninja/internal/errors"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc    func() error
	outputFunc func() ([]byte, error)
}

func (m *mockCommander) Run() error {
	if m.runFunc == nil {
		return nil
	}
	return m.runFunc()
}

func (m *mockCommander) Output() ([]byte, error) {
	if m.outputFunc == nil {
		return nil, nil
	}
	return m.outputFunc()
}

// exitError mimics *exec.ExitError
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

type call struct {
	name string
	args []string
}

// fakeTools installs a PATH with the given binaries and a ninja that
// reports version.
func fakeTools(r *Runner, version string, installed ...string) *[]call {
	calls := &[]call{}

	onPath := map[string]bool{}
	for _, name := range installed {
		onPath[name] = true
	}

	r.lookPath = func(file string) (string, error) {
		if onPath[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}

	r.execCommand = func(_ context.Context, name string, args ...string) Commander {
		*calls = append(*calls, call{name: name, args: args})
		return &mockCommander{
			outputFunc: func() ([]byte, error) {
				return []byte(version + "\n"), nil
			},
		}
	}

	return calls
}

func observe(r *Runner) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	r.log = zap.New(core).Sugar()
	return logs
}

func TestNew(t *testing.T) {
	r := New("", "")
	assert.Equal(t, DefaultNinja, r.NinjaPath)
	assert.Equal(t, DefaultFallback, r.Fallback)
	assert.NotNil(t, r.execCommand)
	assert.NotNil(t, r.lookPath)

	r = New("/opt/ninja", "samu -v")
	assert.Equal(t, "/opt/ninja", r.NinjaPath)
	assert.Equal(t, "samu -v", r.Fallback)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "release", raw: "1.11.1", want: "1.11.1"},
		{name: "minimum", raw: "1.1.0", want: "1.1.0"},
		{name: "two components", raw: "1.10", want: "1.10.0"},
		{name: "development build", raw: "1.12.0.git", want: "1.12.0"},
		{name: "too old", raw: "1.0.3", wantErr: true},
		{name: "garbage", raw: "ninja", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := checkVersion(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsEnvironment(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestProbe(t *testing.T) {
	r := New("", "")
	calls := fakeTools(r, "1.11.1", "ninja")

	v, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.11.1", v.String())
	assert.Equal(t, []call{{name: "/usr/bin/ninja", args: []string{"--version"}}}, *calls)
}

func TestProbeMissing(t *testing.T) {
	r := New("", "")
	fakeTools(r, "")

	_, err := r.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsEnvironment(err))
	assert.Contains(t, err.Error(), `"ninja" not found`)
}

func TestBuildArgs(t *testing.T) {
	assert.Equal(t, []string{"-C", "out/Debug"}, BuildArgs("out/Debug", nil))
	assert.Equal(t, []string{"-C", "out/Debug", "foo", "all"}, BuildArgs("out/Debug", []string{"foo", "all"}))
}

func TestBuildRunsNinja(t *testing.T) {
	r := New("", "")
	calls := fakeTools(r, "1.11.1", "ninja", "samu")
	logs := observe(r)

	require.NoError(t, r.Build(context.Background(), "out/Debug", []string{"foo"}))

	require.Len(t, *calls, 2)
	assert.Equal(t, call{name: "ninja", args: []string{"-C", "out/Debug", "foo"}}, (*calls)[1])
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestBuildFallback(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		installed []string
	}{
		{name: "ninja missing", installed: []string{"samu"}},
		{name: "ninja too old", version: "1.0.0", installed: []string{"ninja", "samu"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("", "samu -k 0")
			calls := fakeTools(r, tt.version, tt.installed...)
			logs := observe(r)

			ctx := context.Background()
			require.NoError(t, r.Build(ctx, "out/Debug", nil))
			require.NoError(t, r.Build(ctx, "out/Release", []string{"all"}))

			last := (*calls)[len(*calls)-1]
			assert.Equal(t, call{name: "/usr/bin/samu", args: []string{"-k", "0", "-C", "out/Release", "all"}}, last)

			warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
			require.Len(t, warnings, 3, "warnings are logged once per runner")
			assert.Equal(t, "No usable native ninja binary found", warnings[0].Message)
			assert.Equal(t, "Using fallback executor", warnings[1].Message)
		})
	}
}

func TestBuildNoExecutor(t *testing.T) {
	r := New("", "")
	fakeTools(r, "")

	err := r.Build(context.Background(), "out/Debug", nil)
	require.Error(t, err)
	assert.True(t, errors.IsEnvironment(err))
	assert.Contains(t, err.Error(), "no build executor available")
	assert.Contains(t, errors.FlattenHints(err), "ninja-build.org")
}

func TestBuildInvalidFallback(t *testing.T) {
	r := New("", `samu "unterminated`)
	fakeTools(r, "")

	err := r.Build(context.Background(), "out/Debug", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestBuildFailure(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		check   func(error) bool
		message string
	}{
		{
			name:    "non-zero exit",
			runErr:  exitError(1),
			check:   errors.IsBuild,
			message: "ninja exited with code 1",
		},
		{
			name:    "cannot start",
			runErr:  fmt.Errorf("fork/exec: resource temporarily unavailable"),
			check:   errors.IsEnvironment,
			message: "failed to run ninja",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("", "")
			fakeTools(r, "1.11.1", "ninja")

			r.execCommand = func(_ context.Context, name string, args ...string) Commander {
				return &mockCommander{
					outputFunc: func() ([]byte, error) { return []byte("1.11.1"), nil },
					runFunc:    func() error { return tt.runErr },
				}
			}

			err := r.Build(context.Background(), "out/Debug", nil)
			require.Error(t, err)
			assert.True(t, tt.check(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
