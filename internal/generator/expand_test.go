package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
	"github.com/node4good/gypninja/internal/sys"
)

func testPolicy(name string) platform.Policy {
	return platform.New(name, platform.Options{Windows: platform.EnvToolchain{Env: sys.MapEnv{}}})
}

func newTestExpander(platformName string) *expander {
	return &expander{
		policy:     testPolicy(platformName),
		rel:        paths.NewRelativizer("/work"),
		config:     "Release",
		configDir:  "out/Release",
		srcDir:     "src/app",
		intPostfix: "src/app",
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name       string
		platform   string
		input      string
		productDir string
		want       string
	}{
		{"product dir stripped", "linux", "$!PRODUCT_DIR/lib/libx.a", ".", "lib/libx.a"},
		{"product dir backslash stripped", "linux", `$!PRODUCT_DIR\gen`, ".", "gen"},
		{"bare product dir", "linux", "$!PRODUCT_DIR", ".", "."},
		{"product dir substituted", "linux", "$!PRODUCT_DIR/gen.h", "../../out/Release", "../../out/Release/gen.h"},
		{"intermediate dir", "linux", "$!INTERMEDIATE_DIR/x.h", ".", "src/app/gen/x.h"},
		{"intermediate dir with product dir", "linux", "$!INTERMEDIATE_DIR/x.h", "../../out/Release", "../../out/Release/src/app/gen/x.h"},
		{"configuration name", "linux", "out/$|CONFIGURATION_NAME/x", ".", "out/Release/x"},
		{"configuration name twice", "linux", "$|CONFIGURATION_NAME-$|CONFIGURATION_NAME", ".", "Release-Release"},
		{"plain path unchanged", "linux", "plain/path.c", ".", "plain/path.c"},
		{"empty product dir is dot", "linux", "$!PRODUCT_DIR/a", "", "a"},
		{"windows separators", "win32", "$!PRODUCT_DIR/a/b.h", ".", `a\b.h`},
		{"windows plain path", "win32", "plain/path.c", ".", `plain\path.c`},
		{"windows dash flag untouched", "win32", "-Ifoo/bar", ".", "-Ifoo/bar"},
		{"windows slash flag untouched", "win32", "/DEBUG:a/b", ".", "/DEBUG:a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExpander(tt.platform)
			assert.Equal(t, tt.want, e.ExpandFrom(tt.input, tt.productDir))
		})
	}
}

func TestExpandNeverLeavesDotSlash(t *testing.T) {
	e := newTestExpander("linux")
	for _, p := range []string{"$!PRODUCT_DIR/a", "$!PRODUCT_DIR/gen/b/c.h", `$!PRODUCT_DIR\d`} {
		assert.NotContains(t, e.Expand(p), "./", p)
	}
}

func TestSrcPath(t *testing.T) {
	tests := []struct {
		platform string
		input    string
		want     string
	}{
		{"linux", "a.c", "../../src/app/a.c"},
		{"linux", "../common/x.c", "../../src/common/x.c"},
		{"linux", "$!PRODUCT_DIR/gen/x.h", "gen/x.h"},
		{"linux", "$!INTERMEDIATE_DIR/x.h", "src/app/gen/x.h"},
		{"linux", "/usr/include", "/usr/include"},
		{"linux", "$|CONFIGURATION_NAME/x.c", "../../src/app/Release/x.c"},
		{"win32", "a.c", `..\..\src\app\a.c`},
		{"win32", "C:/sdk/x.h", `C:\sdk\x.h`},
	}

	for _, tt := range tests {
		e := newTestExpander(tt.platform)
		assert.Equal(t, tt.want, e.SrcPath(tt.input), "%s SrcPath(%q)", tt.platform, tt.input)
	}
}
