package platform

import (
	"strings"

	"github.com/node4good/gypninja/internal/sys"
)

// WindowsToolchain is the late-bound Visual Studio discovery used for the
// windows default variables.
type WindowsToolchain interface {
	MSVSVersion() string
	OSBits() string
}

// DefaultMSVSVersion is reported when GYP_MSVS_VERSION is unset.
const DefaultMSVSVersion = "2015"

// EnvToolchain discovers the toolchain from the process environment.
type EnvToolchain struct {
	Env sys.Env
}

func (t EnvToolchain) MSVSVersion() string {
	if v := t.Env.Getenv("GYP_MSVS_VERSION"); v != "" {
		return v
	}
	return DefaultMSVSVersion
}

// OSBits reports 64 when either the process or its WOW64 host is 64-bit.
func (t EnvToolchain) OSBits() string {
	for _, key := range []string{"PROCESSOR_ARCHITEW6432", "PROCESSOR_ARCHITECTURE"} {
		if strings.HasSuffix(strings.ToUpper(t.Env.Getenv(key)), "64") {
			return "64"
		}
	}
	return "32"
}
