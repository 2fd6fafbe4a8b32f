package errors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationf(t *testing.T) {
	err := Configurationf("unknown type %q", "framework")
	require.Error(t, err)
	assert.Equal(t, `unknown type "framework"`, err.Error())
	assert.True(t, IsConfiguration(err))
	assert.False(t, IsCycle(err))
	assert.False(t, IsIO(err))
}

func TestCycle(t *testing.T) {
	err := Cycle([]string{"a.gyp:a#target", "a.gyp:b#target", "a.gyp:a#target"})
	require.Error(t, err)

	assert.Equal(t, "dependency cycle: a.gyp:a#target -> a.gyp:b#target -> a.gyp:a#target", err.Error())
	assert.True(t, IsCycle(err))
	assert.True(t, IsConfiguration(err), "cycles are configuration errors")
	assert.NotEmpty(t, GetAllHints(err))
}

func TestCycleSurvivesWrapping(t *testing.T) {
	err := Wrapf(Cycle([]string{"x", "x"}), "configuration %s", "Default")

	assert.Contains(t, err.Error(), "configuration Default")
	assert.True(t, IsCycle(err))
	assert.True(t, IsConfiguration(err))
}

func TestIO(t *testing.T) {
	assert.NoError(t, IO(nil, "/tmp/x"))

	err := IO(os.ErrPermission, "out/Default/build.ninja")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out/Default/build.ninja")
	assert.True(t, IsIO(err))
	assert.True(t, Is(err, os.ErrPermission))
	assert.False(t, IsConfiguration(err))
}

func TestEnvironmentf(t *testing.T) {
	err := Environmentf("no build executor available")
	assert.True(t, IsEnvironment(err))
	assert.False(t, IsEnvironment(nil))
}

func TestBuildf(t *testing.T) {
	err := Buildf("ninja exited with code %d", 1)
	assert.True(t, IsBuild(err))
	assert.False(t, IsConfiguration(err))
	assert.True(t, IsBuild(Wrap(err, "configuration Debug")))
}
