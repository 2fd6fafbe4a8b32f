package gyp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/sys"
)

const sampleGraph = `
build_files: [src/app.gyp]
targets:
  - target: src/app.gyp:foo
    type: executable
    sources: [a.cc, b.c]
    dependencies: [src/app.gyp:libbar]
    defines: [BASE]
    configurations:
      Release:
        defines: [NDEBUG]
      Debug:
        defines: [DEBUG]
        product_name: foo_g
  - target: src/app.gyp:libbar#target
    type: static_library
    sources: [bar.c]
    libraries: [-lm]
    make_global_settings:
      - [CC, clang]
      - [CXX, clang++]
    configurations:
      Release: {}
      Debug: {}
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(sampleGraph))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.gyp"}, g.BuildFiles)
	assert.Equal(t, []string{"src/app.gyp:foo#target", "src/app.gyp:libbar#target"}, g.TargetList())
	assert.Equal(t, []string{"Release", "Debug"}, g.ConfigurationNames(), "declaration order is kept")

	foo, ok := g.Lookup("src/app.gyp:foo")
	require.True(t, ok)
	assert.Equal(t, []string{"src/app.gyp:libbar#target"}, foo.Dependencies, "dependencies are qualified")

	bar, ok := g.Lookup("src/app.gyp:libbar#target")
	require.True(t, ok)
	assert.Equal(t, GlobalSettings{{"CC", "clang"}, {"CXX", "clang++"}}, bar.MakeGlobalSettings)
}

func TestParseJSON(t *testing.T) {
	doc := `{
  "build_files": ["x.gyp"],
  "targets": [
    {"target": "x.gyp:x#target", "type": "none",
     "copies": [{"destination": "$!PRODUCT_DIR", "files": ["a.txt"]}]}
  ]
}`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, g.Targets, 1)

	assert.Equal(t, None, g.Targets[0].Type)
	assert.Equal(t, []Copy{{Destination: "$!PRODUCT_DIR", Files: []string{"a.txt"}}}, g.Targets[0].Copies)
	assert.Equal(t, []string{DefaultConfiguration}, g.ConfigurationNames())
}

func TestResolve(t *testing.T) {
	g, err := Parse([]byte(sampleGraph))
	require.NoError(t, err)
	foo, _ := g.Lookup("src/app.gyp:foo")

	debug, err := foo.Resolve("Debug")
	require.NoError(t, err)
	assert.Equal(t, []string{"BASE", "DEBUG"}, debug.Defines, "lists append")
	require.NotNil(t, debug.ProductName)
	assert.Equal(t, "foo_g", *debug.ProductName)
	assert.Equal(t, Executable, debug.Type)

	release, err := foo.Resolve("Release")
	require.NoError(t, err)
	assert.Equal(t, []string{"BASE", "NDEBUG"}, release.Defines)
	assert.Nil(t, release.ProductName)

	assert.Equal(t, []string{"BASE"}, foo.Defines, "resolution does not mutate the target")

	_, err = foo.Resolve("Profile")
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	plain := TargetSpec{Target: "x.gyp:x#target", Settings: Settings{Type: None}}
	every, err := plain.Resolve("Release")
	require.NoError(t, err)
	assert.Equal(t, None, every.Type)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		errContains string
	}{
		{"empty", `targets: []`, "no targets"},
		{"unknown dependency", `targets: [{target: "a.gyp:a", dependencies: ["a.gyp:b"]}]`, "unknown target a.gyp:b"},
		{"duplicate", `targets: [{target: "a.gyp:a"}, {target: "a.gyp:a#target"}]`, "declared twice"},
		{"bad toolset", `targets: [{target: "a.gyp:a#device"}]`, "unknown toolset"},
		{"bad global settings", `targets: [{target: "a.gyp:a", make_global_settings: [[CC]]}]`, "pair"},
		{"not yaml", `targets: [`, "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.True(t, errors.IsConfiguration(err))
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := sys.NewMemFS()
	require.NoError(t, fsys.WriteFile("graph.yml", []byte(sampleGraph), 0o644))

	g, err := Load(fsys, "graph.yml")
	require.NoError(t, err)
	assert.Len(t, g.Targets, 2)

	_, err = Load(fsys, "missing.yml")
	require.Error(t, err)
	assert.True(t, errors.IsIO(err))
	assert.Contains(t, err.Error(), "missing.yml")
}

func TestGlobalSettingsLookup(t *testing.T) {
	gs := GlobalSettings{{"CC", "gcc"}, {"CC", "clang"}, {"AR", "llvm-ar"}}

	v, ok := gs.Lookup("CC")
	assert.True(t, ok)
	assert.Equal(t, "clang", v, "later entries win")

	_, ok = gs.Lookup("LD")
	assert.False(t, ok)
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{StaticLibrary, SharedLibrary, LoadableModule, Executable, None} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("framework").Valid())
	assert.False(t, Type("").Valid())
	assert.True(t, LoadableModule.IsShared())
	assert.False(t, StaticLibrary.IsShared())
}

func TestTokens(t *testing.T) {
	assert.Equal(t, "$!PRODUCT_DIR", ProductDir.String())
	assert.Equal(t, "$!INTERMEDIATE_DIR", IntermediateDir.String())
	assert.Equal(t, "$|CONFIGURATION_NAME", ConfigurationName.String())
	assert.True(t, ProductDir.Anchored())
	assert.False(t, ConfigurationName.Anchored())

	vars := GeneratorVariables()
	assert.Equal(t, "$!PRODUCT_DIR/gen", vars["SHARED_INTERMEDIATE_DIR"])
}
