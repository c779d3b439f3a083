package shell

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// Detection describes how the shell was found.
type Detection struct {
	Shell  Type
	Method string
	Path   string
}

// parentName is replaced in tests.
var parentName = func(ctx context.Context) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getppid()))
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// Detect finds the user's shell from $SHELL, falling back to the name of
// the parent process.
func Detect(ctx context.Context) (*Detection, error) {
	if sh := os.Getenv("SHELL"); sh != "" {
		if t := Parse(sh); t.IsValid() {
			return &Detection{Shell: t, Method: "$SHELL", Path: sh}, nil
		}
	}

	if name, err := parentName(ctx); err == nil {
		if t := Parse(name); t.IsValid() {
			return &Detection{Shell: t, Method: "parent process", Path: name}, nil
		}
	}

	return nil, ErrUnknownShell
}
