// Package apps manages installed app versions on disk and the binary
// symlinks that expose them.
//
// Each app lives under apps_dir/<app>/<version> and is driven by the plugin
// script plugins_dir/<app>.lua. Manager implements transaction.Backend, so
// every mutation cyrene makes to the filesystem goes through it.
package apps
