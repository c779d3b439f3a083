package config

// AppName is the directory name used under the XDG base directories.
const AppName = "cyrene"

// File names inside the resolved directories.
const (
	ConfigFileName   = "config.toml"
	LockfileName     = "cyrene.toml"
	VersionCacheName = "versions.toml"
	PluginExt        = ".lua"
)

// Environment variables that override resolved directories.
const (
	EnvAppsDir    = "CYRENE_APPS_DIR"
	EnvPluginsDir = "CYRENE_PLUGINS_DIR"
	EnvInstallDir = "CYRENE_INSTALL_DIR"
	EnvCacheDir   = "CYRENE_CACHE_DIR"
	EnvConfigDir  = "CYRENE_CONFIG_DIR"
)

// Config file keys.
const (
	keyAppsDir      = "apps_dir"
	keyPluginsDir   = "plugins_dir"
	keyInstallDir   = "install_dir"
	keyCacheDir     = "cache_dir"
	keyLockfilePath = "lockfile_path"
)

// envBindings maps config keys to the environment variables that take
// precedence over them.
var envBindings = map[string]string{
	keyAppsDir:    EnvAppsDir,
	keyPluginsDir: EnvPluginsDir,
	keyInstallDir: EnvInstallDir,
	keyCacheDir:   EnvCacheDir,
}

// defaultConfigTemplate is written when no config file exists yet.
const defaultConfigTemplate = `# cyrene configuration
#
# Every setting is optional. Environment variables (CYRENE_APPS_DIR,
# CYRENE_PLUGINS_DIR, CYRENE_INSTALL_DIR, CYRENE_CACHE_DIR) take precedence.

# apps_dir = "/home/me/.local/share/cyrene/apps"
# plugins_dir = "/home/me/.local/share/cyrene/plugins"
# install_dir = "/home/me/.local/bin"
# cache_dir = "/home/me/.cache/cyrene"
# lockfile_path = "/home/me/.config/cyrene/cyrene.toml"
`
