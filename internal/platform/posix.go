package platform

import (
	"path"
	"strings"

	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
)

type posix struct {
	name string
}

func (p *posix) Name() string      { return p.name }
func (p *posix) Flavor() Flavor    { return Posix }
func (p *posix) ObjectExt() string { return ".o" }
func (p *posix) ShellAnd() string  { return "&&" }

func (p *posix) Naming() Naming {
	return Naming{
		Static: Affix{Prefix: "lib", Suffix: ".a"},
		Shared: Affix{Prefix: "lib", Suffix: ".so"},
	}
}

func (p *posix) DefaultToolchain(string) Toolchain {
	switch p.name {
	case "freebsd", "openbsd":
		return Toolchain{CC: "clang", CXX: "clang++", AR: "ar"}
	}
	return Toolchain{CC: "gcc", CXX: "g++", AR: "ar"}
}

func (p *posix) TargetFlags(s gyp.Settings) Flags {
	return Flags{
		Cflags:   s.Cflags,
		CflagsC:  s.CflagsC,
		CflagsCC: s.CflagsCC,
		Ldflags:  s.Ldflags,
	}
}

func (p *posix) EscapeDefine(define string) string {
	d := "-D" + define
	if strings.Contains(d, `"`) {
		return "'" + d + "'"
	}
	return d
}

func (p *posix) AdjustLibraries(libs []string) []string {
	return libs
}

func (p *posix) NativePath(s string) string    { return s }
func (p *posix) WrapCommand(cmd string) string { return cmd }
func (p *posix) IsAssembly(source string) bool { return false }

func (p *posix) Variables() map[string]string {
	osName := p.name
	if osName == "sunos" {
		osName = "solaris"
	}
	return map[string]string{
		"OS":                osName,
		"SHARED_LIB_SUFFIX": ".so",
		"SHARED_LIB_DIR":    path.Join(gyp.ProductDir.String(), "lib"),
		"LIB_DIR":           path.Join(gyp.ProductDir.String(), "obj"),
	}
}

func (p *posix) WriteRules(w *ninja.Writer, opts RuleOptions) {
	writeUnixRules(w, opts, unixLinkCommands{
		solink: "$ld -shared $ldflags -o $out -Wl,--start-group $in -Wl,--end-group $libs",
		link:   "$ld $ldflags -o $out -Wl,--start-group $in -Wl,--end-group $libs",
	})
}

type unixLinkCommands struct {
	solink string
	link   string
}

func writeUnixRules(w *ninja.Writer, opts RuleOptions, cmds unixLinkCommands) {
	w.Rule("cc", ninja.RuleParams{
		Command:     "$cc -MMD -MF $out.d $defines $includes $cflags $cflags_c -c $in -o $out",
		Description: "CC $out",
		Depfile:     "$out.d",
		Deps:        "gcc",
	})
	w.Rule("cxx", ninja.RuleParams{
		Command:     "$cxx -MMD -MF $out.d $defines $includes $cflags $cflags_cc -c $in -o $out",
		Description: "CXX $out",
		Depfile:     "$out.d",
		Deps:        "gcc",
	})
	w.Rule("alink", ninja.RuleParams{
		Command:     "rm -rf $out && $ar rcs $out $in",
		Description: "AR $out",
	})
	w.Rule("solink", ninja.RuleParams{
		Command:     useLinker(cmds.solink, opts.UseCxx),
		Description: "SOLINK $out",
		Pool:        opts.LinkPool,
		Restat:      true,
	})
	w.Rule("link", ninja.RuleParams{
		Command:     useLinker(cmds.link, opts.UseCxx),
		Description: "LINK $out",
		Pool:        opts.LinkPool,
	})
	w.Rule("copy", ninja.RuleParams{
		Command:     "ln -f $in $out 2>/dev/null || (rm -rf $out && cp -af $in $out)",
		Description: "COPY $in $out",
	})
}

// useLinker switches a link command template to the C++ linker.
func useLinker(cmd string, cxx bool) string {
	if cxx {
		return strings.Replace(cmd, "$ld ", "$ldxx ", 1)
	}
	return cmd
}
