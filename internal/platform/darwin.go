package platform

import (
	"strings"

	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
)

type darwin struct {
	posix
	xcode Translator
}

func (p *darwin) Flavor() Flavor { return Darwin }

func (p *darwin) Naming() Naming {
	n := p.posix.Naming()
	n.Shared.Suffix = ".dylib"
	return n
}

func (p *darwin) DefaultToolchain(string) Toolchain {
	return Toolchain{CC: "clang", CXX: "clang++", AR: "ar"}
}

// TargetFlags ignores the plain flag lists, only xcode_settings count.
func (p *darwin) TargetFlags(s gyp.Settings) Flags {
	if s.XcodeSettings == nil {
		return Flags{}
	}
	return p.xcode.TargetFlags(s)
}

// AdjustLibraries turns each framework path into one "-framework Name" item.
func (p *darwin) AdjustLibraries(libs []string) []string {
	res := make([]string, 0, len(libs))
	for _, lib := range libs {
		if strings.HasSuffix(lib, ".framework") && !strings.HasPrefix(lib, "-") {
			base := lib[strings.LastIndex(lib, "/")+1:]
			res = append(res, "-framework "+strings.TrimSuffix(base, ".framework"))
			continue
		}
		res = append(res, lib)
	}
	return res
}

func (p *darwin) Variables() map[string]string {
	return map[string]string{
		"OS":                "mac",
		"SHARED_LIB_SUFFIX": ".dylib",
		"SHARED_LIB_DIR":    gyp.ProductDir.String(),
		"LIB_DIR":           gyp.ProductDir.String(),
	}
}

func (p *darwin) WriteRules(w *ninja.Writer, opts RuleOptions) {
	writeUnixRules(w, opts, unixLinkCommands{
		solink: "$ld -shared -Wl,-install_name,@rpath/$$(basename $out) $ldflags -o $out $in $libs",
		link:   "$ld $ldflags -o $out $in $libs",
	})
}

// XcodeTranslator maps the OTHER_* entries of xcode_settings to flags.
type XcodeTranslator struct{}

func (XcodeTranslator) TargetFlags(s gyp.Settings) Flags {
	x := s.XcodeSettings
	return Flags{
		Cflags:   stringList(x["OTHER_CFLAGS"]),
		CflagsCC: stringList(x["OTHER_CPLUSPLUSFLAGS"]),
		Ldflags:  stringList(x["OTHER_LDFLAGS"]),
	}
}
