// Package plugin hosts the Lua script that describes one application.
//
// A script defines four global functions:
//
//	get_versions()     -> { "1.2.0", "1.1.0", ... }
//	install_app(env)   -- env.version is the version being installed
//	post_install(env)
//	binaries(env)      -> { {"node", "bin/node"}, ... }
//
// Scripts run with only the base, table, string and math libraries. They
// reach the outside world through the host modules sources, versions,
// strings, modify and platform. Paths given to sources and modify are
// resolved inside the directory of the version being installed, and those
// functions refuse to run outside install_app and post_install.
package plugin
