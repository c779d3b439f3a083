package shell

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/damillora/cyrene/internal/fsutil"
)

// ActivationMarker identifies an existing cyrene line in an rc file.
const ActivationMarker = "cyrene env"

// SetupResult reports what Setup did.
type SetupResult struct {
	Shell          Type
	RCFile         string
	Command        string
	Added          bool
	AlreadyPresent bool
}

// RCFilePath returns the rc file of s under home.
func RCFilePath(s Type, home string) (string, error) {
	switch s {
	case Bash:
		return filepath.Join(home, ".bashrc"), nil
	case Zsh:
		return filepath.Join(home, ".zshrc"), nil
	case Fish:
		return filepath.Join(home, ".config", "fish", "config.fish"), nil
	}
	return "", &UnsupportedShellError{Shell: s.String()}
}

// HasActivation reports whether the rc file already runs cyrene env.
// A missing file has no activation.
func HasActivation(rcPath string) (bool, error) {
	f, err := os.Open(rcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &RCFileError{Path: rcPath, Message: "open", Cause: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ActivationMarker) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, &RCFileError{Path: rcPath, Message: "read", Cause: err}
	}
	return false, nil
}

// Setup appends the activation command for s to its rc file under home,
// unless it is already there. With dryRun nothing is written.
func Setup(s Type, home string, dryRun bool) (*SetupResult, error) {
	cmd, err := ActivationCommand(s)
	if err != nil {
		return nil, err
	}
	rcPath, err := RCFilePath(s, home)
	if err != nil {
		return nil, err
	}

	res := &SetupResult{Shell: s, RCFile: rcPath, Command: cmd}
	present, err := HasActivation(rcPath)
	if err != nil {
		return nil, err
	}
	if present {
		res.AlreadyPresent = true
		return res, nil
	}
	if dryRun {
		return res, nil
	}

	existing, err := os.ReadFile(rcPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &RCFileError{Path: rcPath, Message: "read", Cause: err}
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n# cyrene: put installed binaries on PATH\n%s\n", cmd)

	perm := os.FileMode(0o644)
	if info, err := os.Stat(rcPath); err == nil {
		perm = info.Mode().Perm()
	}
	if err := fsutil.WriteFileAtomic(rcPath, []byte(b.String()), perm); err != nil {
		return nil, &RCFileError{Path: rcPath, Message: "write", Cause: err}
	}
	res.Added = true
	return res, nil
}
