package apps

import "errors"

var (
	// ErrUnknownApp means no plugin script exists for the app.
	ErrUnknownApp = errors.New("no plugin for app")
	// ErrVersionNotInstalled means the version directory does not exist.
	ErrVersionNotInstalled = errors.New("version not installed")
	// ErrAlreadyInstalled means the version directory already exists.
	ErrAlreadyInstalled = errors.New("version already installed")
	// ErrNotInLockfile means the app has no linked version to unlink.
	ErrNotInLockfile = errors.New("app not in lockfile")
	// ErrSelfLink means a link destination is the running cyrene executable.
	ErrSelfLink = errors.New("refusing to replace the cyrene executable")
	// ErrMissingBinary means a binary declared by the plugin is not present
	// in the install directory.
	ErrMissingBinary = errors.New("binary missing from install directory")
)
