package platform

import (
	"strings"

	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
)

type windows struct {
	msvs      Translator
	toolchain WindowsToolchain
}

func (p *windows) Name() string      { return "win32" }
func (p *windows) Flavor() Flavor    { return Windows }
func (p *windows) ObjectExt() string { return ".obj" }
func (p *windows) ShellAnd() string  { return "&" }

func (p *windows) Naming() Naming {
	return Naming{
		Static:     Affix{Suffix: ".lib"},
		Shared:     Affix{Suffix: ".dll"},
		Executable: Affix{Suffix: ".exe"},
	}
}

// DefaultToolchain selects the cl.exe family for targetArch, ia32 when unset.
func (p *windows) DefaultToolchain(targetArch string) Toolchain {
	arch := targetArch
	if arch == "" {
		arch = "ia32"
	}
	return Toolchain{
		CC:  "$cl_" + arch,
		CXX: "$cl_" + arch,
		LD:  "link.exe",
		AR:  "lib.exe",
		Extra: []ninja.Variable{
			{Name: "cl_ia32", Value: "cl.exe"},
			{Name: "cl_x64", Value: "cl.exe"},
			{Name: "ml_ia32", Value: "ml.exe"},
			{Name: "ml_x64", Value: "ml64.exe"},
			{Name: "mt", Value: "mt.exe"},
			{Name: "asm", Value: "$ml_" + arch},
		},
	}
}

func (p *windows) TargetFlags(s gyp.Settings) Flags {
	return p.msvs.TargetFlags(s)
}

// EscapeDefine octal-encodes '#', which cl.exe would otherwise turn into
// '=', then quotes the flag for the command interpreter.
func (p *windows) EscapeDefine(define string) string {
	d := "-D" + strings.ReplaceAll(define, "#", `\0043`)
	return quoteForCmd(d)
}

func quoteForCmd(arg string) string {
	needsQuote := strings.ContainsAny(arg, " \t\"")
	arg = strings.ReplaceAll(arg, "%", "%%")
	arg = strings.ReplaceAll(arg, `"`, `\"`)
	if needsQuote {
		return `"` + arg + `"`
	}
	return arg
}

// AdjustLibraries rewrites -lfoo into foo.lib and drops surrounding quotes.
func (p *windows) AdjustLibraries(libs []string) []string {
	res := make([]string, 0, len(libs))
	for _, lib := range libs {
		if len(lib) >= 2 && strings.HasPrefix(lib, `"`) && strings.HasSuffix(lib, `"`) {
			lib = lib[1 : len(lib)-1]
		}
		if strings.HasPrefix(lib, "-l") {
			lib = lib[2:]
			if !strings.HasSuffix(strings.ToLower(lib), ".lib") {
				lib += ".lib"
			}
		}
		res = append(res, lib)
	}
	return res
}

// NativePath switches to backslashes unless s looks like a flag.
func (p *windows) NativePath(s string) string {
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "/") {
		return s
	}
	return strings.ReplaceAll(s, "/", `\`)
}

func (p *windows) WrapCommand(cmd string) string {
	return `cmd.exe /s /c "` + cmd + `"`
}

func (p *windows) IsAssembly(source string) bool {
	return strings.HasSuffix(source, ".asm")
}

func (p *windows) Variables() map[string]string {
	return map[string]string{
		"OS":           "win",
		"MSVS_VERSION": p.toolchain.MSVSVersion(),
		"MSVS_OS_BITS": p.toolchain.OSBits(),
	}
}

func (p *windows) WriteRules(w *ninja.Writer, opts RuleOptions) {
	w.Rule("cc", ninja.RuleParams{
		Command:     "$cc /nologo /showIncludes /FC $defines $includes $cflags $cflags_c /c $in /Fo$out",
		Description: "CC $out",
		Deps:        "msvc",
	})
	w.Rule("cxx", ninja.RuleParams{
		Command:     "$cxx /nologo /showIncludes /FC $defines $includes $cflags $cflags_cc /c $in /Fo$out",
		Description: "CXX $out",
		Deps:        "msvc",
	})
	w.Rule("asm", ninja.RuleParams{
		Command:     "$asm /nologo $defines $includes $asmflags /c /Fo$out $in",
		Description: "ASM $out",
	})
	w.Rule("alink", ninja.RuleParams{
		Command:     "$ar /nologo /ignore:4221 /OUT:$out $in",
		Description: "LIB $out",
	})
	w.Rule("solink", ninja.RuleParams{
		Command:     useLinker("$ld /nologo /DLL $ldflags /OUT:$out /IMPLIB:$out.lib $in $libs", opts.UseCxx),
		Description: "LINK(DLL) $out",
		Pool:        opts.LinkPool,
		Restat:      true,
	})
	w.Rule("link", ninja.RuleParams{
		Command:     useLinker("$ld /nologo $ldflags /OUT:$out $in $libs", opts.UseCxx),
		Description: "LINK $out",
		Pool:        opts.LinkPool,
	})
	w.Rule("copy", ninja.RuleParams{
		Command:     `cmd.exe /s /c "copy /Y $in $out >nul"`,
		Description: "COPY $in $out",
	})
}

// MSVSTranslator maps the AdditionalOptions of msvs_settings to flags.
type MSVSTranslator struct{}

func (MSVSTranslator) TargetFlags(s gyp.Settings) Flags {
	opts := func(tool string) []string {
		return stringList(s.MSVSSettings[tool]["AdditionalOptions"])
	}
	return Flags{
		Cflags:   opts("VCCLCompilerTool"),
		Ldflags:  opts("VCLinkerTool"),
		Asmflags: opts("MASM"),
	}
}
