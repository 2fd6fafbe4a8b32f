// Package platform holds the per-platform policy of the ninja generator:
// artifact naming, toolchain defaults, flag translation, and the shared rule
// templates written to every master file.
package platform

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
	"github.com/node4good/gypninja/internal/sys"
)

// Flavor is the closed set of platform families.
type Flavor int

const (
	Posix Flavor = iota
	Darwin
	Windows
)

func (f Flavor) String() string {
	switch f {
	case Darwin:
		return "darwin"
	case Windows:
		return "win32"
	}
	return "posix"
}

// Affix is the prefix and suffix wrapped around a product name.
type Affix struct {
	Prefix string
	Suffix string
}

// Naming is the default product affix per target type.
type Naming struct {
	Static     Affix
	Shared     Affix
	Executable Affix
}

// Lookup returns the affix for t. Type none has an empty affix; unknown
// types report false.
func (n Naming) Lookup(t gyp.Type) (Affix, bool) {
	switch t {
	case gyp.StaticLibrary:
		return n.Static, true
	case gyp.SharedLibrary, gyp.LoadableModule:
		return n.Shared, true
	case gyp.Executable:
		return n.Executable, true
	case gyp.None:
		return Affix{}, true
	}
	return Affix{}, false
}

// Flags are the compiler and linker flags of one target.
type Flags struct {
	Cflags   []string
	CflagsC  []string
	CflagsCC []string
	Ldflags  []string
	Asmflags []string
}

// Toolchain is the default compiler, linker and archiver selection. Extra
// variables are declared ahead of the toolchain variables, in order. An
// empty LD defaults to the C compiler.
type Toolchain struct {
	CC    string
	CXX   string
	LD    string
	AR    string
	Extra []ninja.Variable
}

// RuleOptions parameterize the shared rule templates.
type RuleOptions struct {
	// UseCxx selects $ldxx for the link family.
	UseCxx   bool
	LinkPool string
}

// Policy is the behaviour that differs between platform families.
type Policy interface {
	// Name is the platform name, e.g. "linux" or "win32".
	Name() string
	Flavor() Flavor
	ObjectExt() string
	// ShellAnd joins the directory change and the command of an action.
	ShellAnd() string
	Naming() Naming
	DefaultToolchain(targetArch string) Toolchain
	// TargetFlags returns the flags for s. Posix uses the flag lists as
	// declared; darwin and windows translate native settings instead.
	TargetFlags(s gyp.Settings) Flags
	EscapeDefine(define string) string
	AdjustLibraries(libs []string) []string
	// NativePath converts an expanded path to the platform separator.
	NativePath(p string) string
	// WrapCommand adapts an action command line for the platform shell.
	WrapCommand(cmd string) string
	// IsAssembly reports whether source uses the dedicated assembler rule.
	IsAssembly(source string) bool
	WriteRules(w *ninja.Writer, opts RuleOptions)
	// Variables are the platform entries of the generator default variables.
	Variables() map[string]string
}

// Translator derives flags from a target's native settings dictionary.
type Translator interface {
	TargetFlags(s gyp.Settings) Flags
}

// Options carry the late-bound collaborators of a policy. Nil fields get the
// built-in implementations.
type Options struct {
	Xcode   Translator
	MSVS    Translator
	Windows WindowsToolchain
}

// New returns the policy for the named platform. Any platform that is not
// darwin or win32 is posix.
func New(name string, opts Options) Policy {
	switch name {
	case "darwin":
		p := &darwin{posix: posix{name: name}, xcode: opts.Xcode}
		if p.xcode == nil {
			p.xcode = XcodeTranslator{}
		}
		return p
	case "win32":
		p := &windows{msvs: opts.MSVS, toolchain: opts.Windows}
		if p.msvs == nil {
			p.msvs = MSVSTranslator{}
		}
		if p.toolchain == nil {
			p.toolchain = EnvToolchain{Env: sys.OSEnv{}}
		}
		return p
	}
	return &posix{name: name}
}

// DefaultVariables returns the generator default variables for p.
func DefaultVariables(p Policy) map[string]string {
	vars := gyp.GeneratorVariables()

	naming := p.Naming()
	vars["EXECUTABLE_PREFIX"] = naming.Executable.Prefix
	vars["EXECUTABLE_SUFFIX"] = naming.Executable.Suffix
	vars["STATIC_LIB_PREFIX"] = naming.Static.Prefix
	vars["STATIC_LIB_SUFFIX"] = naming.Static.Suffix
	vars["SHARED_LIB_PREFIX"] = naming.Shared.Prefix
	vars["SHARED_LIB_SUFFIX"] = naming.Shared.Suffix

	for k, v := range p.Variables() {
		vars[k] = v
	}
	return vars
}

// stringList reads a settings value that is either a list or a single
// shell-quoted string.
func stringList(v interface{}) []string {
	switch v := v.(type) {
	case string:
		words, err := shellquote.Split(v)
		if err != nil {
			return strings.Fields(v)
		}
		return words
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		res := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}
	return nil
}
