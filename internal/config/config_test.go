package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# apps_dir")

	// The template is all comments, so loading it again must also work.
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_ReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `
apps_dir = "/opt/cyrene/apps"
plugins_dir = "/opt/cyrene/plugins"
install_dir = "/opt/bin"
lockfile_path = "/opt/cyrene/lock.toml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/cyrene/apps", cfg.AppsDir)
	assert.Equal(t, "/opt/cyrene/plugins", cfg.PluginsDir)
	assert.Equal(t, "/opt/bin", cfg.InstallDir)
	assert.Equal(t, "/opt/cyrene/lock.toml", cfg.LockfilePath)
	assert.Empty(t, cfg.CacheDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`apps_dir = "/from/file"`), 0o644))

	t.Setenv(EnvAppsDir, "/from/env")
	t.Setenv(EnvInstallDir, "/env/bin")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.AppsDir)
	assert.Equal(t, "/env/bin", cfg.InstallDir)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("apps_dir = [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestDefaultConfigDir_Env(t *testing.T) {
	t.Setenv(EnvConfigDir, "/custom/config")
	assert.Equal(t, "/custom/config", DefaultConfigDir())
}
