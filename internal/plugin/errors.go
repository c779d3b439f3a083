package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEntryPoint is returned when a script does not define the
	// function being called.
	ErrMissingEntryPoint = errors.New("plugin entry point not defined")

	// ErrNoInstallScope is returned when a filesystem capability is used
	// outside install_app or post_install.
	ErrNoInstallScope = errors.New("filesystem access outside an install step")

	// ErrBadReturn is returned when an entry point returns the wrong shape.
	ErrBadReturn = errors.New("unexpected plugin return value")
)

// LoadError is returned when a script cannot be parsed, compiled or run.
type LoadError struct {
	Path   string
	Line   int // zero when unknown
	Column int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load plugin %s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("load plugin %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CallError wraps a Lua runtime error raised while running an entry point.
type CallError struct {
	App   string
	Entry string
	Err   error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("plugin %s: %s: %v", e.App, e.Entry, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
