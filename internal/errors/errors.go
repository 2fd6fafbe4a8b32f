// Package errors provides error handling for gyp-ninja.
//
// It re-exports github.com/cockroachdb/errors and adds the generator's error
// classes. Every error raised while generating build files is marked with one
// of the sentinels below so callers can branch with Is:
//
//	if errors.Is(err, errors.ErrConfiguration) {
//	    // fix the graph, re-run
//	}
package errors

import (
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Error classes. Cycle errors also carry ErrConfiguration.
var (
	// ErrConfiguration indicates the target graph cannot be compiled as given
	ErrConfiguration = New("configuration error")

	// ErrCycle indicates a dependency cycle reached while resolving outputs
	ErrCycle = New("dependency cycle")

	// ErrEnvironment indicates a required external tool is unavailable
	ErrEnvironment = New("environment error")

	// ErrIO indicates a filesystem operation failed
	ErrIO = New("i/o error")

	// ErrBuild indicates the downstream build tool reported failure
	ErrBuild = New("build failed")
)

// Configurationf creates a configuration error with a formatted message.
func Configurationf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrConfiguration)
}

// Environmentf creates an environment error with a formatted message.
func Environmentf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrEnvironment)
}

// Buildf creates a build failure error with a formatted message.
func Buildf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrBuild)
}

// Cycle reports the dependency chain that closes on itself. The last element
// of path must repeat an earlier one.
func Cycle(path []string) error {
	err := crdb.NewWithDepthf(1, "dependency cycle: %s", strings.Join(path, " -> "))
	err = WithHint(err, "targets of type none with no actions or copies resolve their outputs through their dependencies")
	return Mark(Mark(err, ErrCycle), ErrConfiguration)
}

// IO wraps a filesystem error with the path it concerns.
func IO(err error, path string) error {
	if err == nil {
		return nil
	}
	return Mark(crdb.WrapWithDepthf(1, err, "%s", path), ErrIO)
}

// IsConfiguration reports whether err is, or wraps, a configuration error.
func IsConfiguration(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsCycle reports whether err is, or wraps, a dependency cycle error.
func IsCycle(err error) bool {
	return err != nil && Is(err, ErrCycle)
}

// IsIO reports whether err is, or wraps, an I/O error.
func IsIO(err error) bool {
	return err != nil && Is(err, ErrIO)
}

// IsEnvironment reports whether err is, or wraps, an environment error.
func IsEnvironment(err error) bool {
	return err != nil && Is(err, ErrEnvironment)
}

// IsBuild reports whether err is, or wraps, a build failure.
func IsBuild(err error) bool {
	return err != nil && Is(err, ErrBuild)
}
