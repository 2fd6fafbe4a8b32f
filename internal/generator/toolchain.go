package generator

import (
	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/ninja"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/sys"
)

// toolNames are the toolchain variables, in declaration order.
var toolNames = []string{"cc", "cxx", "ld", "ldxx", "ar"}

// crossCompileVars switch on host toolchain variables when present.
var crossCompileVars = []string{"GYP_CROSSCOMPILE", "CC_host", "CXX_host", "LD_host", "AR_host"}

type toolchain struct {
	cc, cxx, ld, ldxx, ar string
}

func (tc toolchain) variables(suffix string) []ninja.Variable {
	values := []string{tc.cc, tc.cxx, tc.ld, tc.ldxx, tc.ar}

	vars := make([]ninja.Variable, len(toolNames))
	for i, name := range toolNames {
		vars[i] = ninja.Variable{Name: name + suffix, Value: values[i]}
	}
	return vars
}

// toolchainResolver layers platform defaults, make_global_settings and the
// environment, later layers winning.
type toolchainResolver struct {
	policy     platform.Policy
	env        sys.Env
	global     gyp.GlobalSettings
	topDir     string
	targetArch string
}

// globalValue resolves a make_global_settings value against the top-level
// directory.
func (r *toolchainResolver) globalValue(v string) string {
	if paths.IsAbs(v) {
		return v
	}
	return paths.Join(r.topDir, v)
}

func (r *toolchainResolver) lookup(key string) (string, bool) {
	v, ok := r.global.Lookup(key)
	if !ok {
		return "", false
	}
	return r.globalValue(v), true
}

// getenv returns the first non-empty variable of keys.
func (r *toolchainResolver) getenv(keys ...string) string {
	for _, key := range keys {
		if v := r.env.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// target resolves the target toolchain and the extra platform variables
// declared ahead of it.
func (r *toolchainResolver) target() (toolchain, []ninja.Variable) {
	def := r.policy.DefaultToolchain(r.targetArch)
	cc, cxx, ld, ar := def.CC, def.CXX, def.LD, def.AR
	if ar == "" {
		ar = "ar"
	}

	if v, ok := r.lookup("CC"); ok {
		cc = v
	}
	if v, ok := r.lookup("CXX"); ok {
		cxx = v
	}
	if v, ok := r.lookup("LD"); ok {
		ld = v
	}
	if v, ok := r.lookup("AR"); ok {
		ar = v
	}

	cc = firstOf(r.getenv("CC_target", "CC"), cc)
	cxx = firstOf(r.getenv("CXX_target", "CXX"), cxx)
	ld = firstOf(r.getenv("LD_target", "LD"), ld)

	tc := toolchain{
		cc:   cc,
		cxx:  cxx,
		ld:   firstOf(ld, cc),
		ldxx: firstOf(r.getenv("LDXX_target", "LDXX"), ld, cxx),
		ar:   firstOf(r.getenv("AR_target", "AR"), ar),
	}
	return tc, def.Extra
}

// host derives the host toolchain from the target one. A host compiler
// override without a host linker override moves the linker along.
func (r *toolchainResolver) host(target toolchain) toolchain {
	tc := target

	override := func(key, envKey string, dst *string) bool {
		set := false
		if v, ok := r.lookup(key); ok {
			*dst, set = v, true
		}
		if v := r.env.Getenv(envKey); v != "" {
			*dst, set = v, true
		}
		return set
	}

	ccSet := override("CC.host", "CC_host", &tc.cc)
	cxxSet := override("CXX.host", "CXX_host", &tc.cxx)
	ldSet := override("LD.host", "LD_host", &tc.ld)
	ldxxSet := override("LDXX.host", "LDXX_host", &tc.ldxx)
	override("AR.host", "AR_host", &tc.ar)

	if ccSet && !ldSet {
		tc.ld = tc.cc
	}
	if cxxSet && !ldxxSet {
		tc.ldxx = tc.cxx
	}
	return tc
}

// crossCompileRequested reports whether the environment asks for host
// toolchain variables.
func crossCompileRequested(env sys.Env) bool {
	for _, key := range crossCompileVars {
		if _, ok := env.LookupEnv(key); ok {
			return true
		}
	}
	return false
}
