package shell

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/damillora/cyrene/internal/config"
)

// Snippet returns shell code that exports the cyrene directory overrides
// and prepends the exe dir to PATH unless it is already there.
func Snippet(s Type, dirs *config.Dirs) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}

	vars := [][2]string{
		{config.EnvAppsDir, dirs.AppsDir},
		{config.EnvPluginsDir, dirs.PluginsDir},
		{config.EnvInstallDir, dirs.ExeDir},
	}

	var b strings.Builder
	if s == Fish {
		for _, kv := range vars {
			fmt.Fprintf(&b, "set -gx %s %s\n", kv[0], fishQuote(kv[1]))
		}
		q := fishQuote(dirs.ExeDir)
		fmt.Fprintf(&b, "if not contains -- %s $PATH\n    set -gx PATH %s $PATH\nend\n", q, q)
		return b.String(), nil
	}

	for _, kv := range vars {
		q, err := posixQuote(kv[1])
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "export %s=%s\n", kv[0], q)
	}
	q, err := posixQuote(dirs.ExeDir)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "case \":${PATH}:\" in\n    *:%s:*) ;;\n    *) export PATH=%s\":${PATH}\" ;;\nesac\n", q, q)
	return b.String(), nil
}

// ActivationCommand is the line users put in their rc file.
func ActivationCommand(s Type) (string, error) {
	if err := Validate(s); err != nil {
		return "", err
	}
	if s == Fish {
		return "cyrene env fish | source", nil
	}
	return fmt.Sprintf(`eval "$(cyrene env %s)"`, s), nil
}

func posixQuote(s string) (string, error) {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return "", fmt.Errorf("quote %s: %w", s, err)
	}
	return q, nil
}

func fishQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
