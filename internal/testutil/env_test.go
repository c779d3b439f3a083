package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	dirs := testutil.SetupTestEnv(t)

	for _, env := range []string{config.EnvConfigDir, config.EnvAppsDir, config.EnvPluginsDir, config.EnvInstallDir, config.EnvCacheDir} {
		assert.NotEmpty(t, os.Getenv(env), env)
	}
	assert.Empty(t, os.Getenv("GITHUB_TOKEN"))

	for _, dir := range []string{dirs.AppsDir, dirs.PluginsDir, dirs.ExeDir, dirs.ConfigDir, dirs.CacheDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	assert.Equal(t, os.Getenv(config.EnvInstallDir), dirs.ExeDir)
	assert.Equal(t, filepath.Join(dirs.ConfigDir, config.LockfileName), dirs.LockfilePath)
}

func TestSetupTestEnv_Isolated(t *testing.T) {
	a := testutil.SetupTestEnv(t)
	b := testutil.SetupTestEnv(t)
	assert.NotEqual(t, a.AppsDir, b.AppsDir)
}

func TestFakeInstall(t *testing.T) {
	dirs := testutil.SetupTestEnv(t)
	dir := testutil.FakeInstall(t, dirs, "tool", "1.0.0", map[string]string{"bin/tool": "#!/bin/sh\n"})

	assert.Equal(t, dirs.InstallationPath("tool", "1.0.0"), dir)
	info, err := os.Stat(filepath.Join(dir, "bin", "tool"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)
}

func TestWritePlugin(t *testing.T) {
	dirs := testutil.SetupTestEnv(t)
	path := testutil.WritePlugin(t, dirs, "tool", "-- empty\n")

	names, err := dirs.PluginNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"tool"}, names)
	assert.FileExists(t, path)
}
