// Package config resolves cyrene's user configuration and directory layout.
//
// Resolution order for each directory, highest first:
//
//  1. CYRENE_* environment variable
//  2. the user config file (config_dir/config.toml)
//  3. the XDG base directory (data, cache, config)
//
// The exe dir, where binaries are linked, defaults to the directory that
// holds the running cyrene executable.
package config
