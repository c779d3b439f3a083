package shell

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownShell is returned when the shell cannot be determined.
var ErrUnknownShell = errors.New("could not detect shell")

// Type is a supported shell.
type Type string

const (
	Bash    Type = "bash"
	Zsh     Type = "zsh"
	Fish    Type = "fish"
	Unknown Type = "unknown"
)

func (s Type) String() string { return string(s) }

// IsValid reports whether s is a supported shell.
func (s Type) IsValid() bool {
	switch s {
	case Bash, Zsh, Fish:
		return true
	}
	return false
}

// Supported lists the shells cyrene can integrate with.
func Supported() []Type {
	return []Type{Bash, Zsh, Fish}
}

// Parse maps a shell name or binary path to a Type. Login shells reported
// as "-zsh" are accepted.
func Parse(s string) Type {
	name := strings.ToLower(strings.TrimPrefix(filepath.Base(s), "-"))
	switch Type(name) {
	case Bash, Zsh, Fish:
		return Type(name)
	}
	return Unknown
}

// UnsupportedShellError is returned for a shell cyrene cannot integrate with.
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh, fish)", e.Shell)
}

// Validate fails unless s is supported.
func Validate(s Type) error {
	if !s.IsValid() {
		return &UnsupportedShellError{Shell: s.String()}
	}
	return nil
}

// RCFileError reports a failure reading or writing an rc file.
type RCFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RCFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rc file %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("rc file %s: %s", e.Path, e.Message)
}

func (e *RCFileError) Unwrap() error { return e.Cause }
