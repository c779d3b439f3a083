package apps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/google/uuid"

	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/transaction"
)

// link is one planned symlink.
type link struct {
	name   string
	dest   string // exe_dir/<name>
	target string // file inside the install dir
}

// links resolves the binaries of app@v to link destinations and targets.
func (m *Manager) links(ctx context.Context, app, v string) ([]link, error) {
	h, err := m.Host(ctx, app)
	if err != nil {
		return nil, err
	}
	bins, err := h.Binaries(ctx, v)
	if err != nil {
		return nil, err
	}

	dir := m.dirs.InstallationPath(app, v)
	out := make([]link, 0, len(bins))
	for _, b := range bins {
		if err := config.ValidateName("binary", b.Name); err != nil {
			return nil, err
		}
		target, err := securejoin.SecureJoin(dir, b.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve binary %s: %w", b.Name, err)
		}
		out = append(out, link{name: b.Name, dest: m.dirs.LinkPath(b.Name), target: target})
	}
	return out, nil
}

// LinkBinaries symlinks every binary of app@v into exe_dir. Existing
// destinations are replaced only when overwrite is set; the rest are
// reported as skipped. Nothing is touched if any destination is the
// running executable.
func (m *Manager) LinkBinaries(ctx context.Context, app, v string, overwrite bool) (*transaction.LinkReport, error) {
	if !m.IsInstalled(app, v) {
		return nil, fmt.Errorf("%w: %s@%s", ErrVersionNotInstalled, app, v)
	}
	links, err := m.links(ctx, app, v)
	if err != nil {
		return nil, err
	}

	for _, l := range links {
		if m.isSelf(l.dest) {
			return nil, fmt.Errorf("%w: %s", ErrSelfLink, l.dest)
		}
		if _, err := os.Stat(l.target); err != nil {
			return nil, fmt.Errorf("%w: %s (%s)", ErrMissingBinary, l.name, l.target)
		}
	}

	if err := os.MkdirAll(m.dirs.ExeDir, 0o755); err != nil {
		return nil, fmt.Errorf("create exe dir: %w", err)
	}

	report := &transaction.LinkReport{App: app, Version: v}
	for _, l := range links {
		current, err := os.Readlink(l.dest)
		switch {
		case err == nil && current == l.target:
			report.Linked = append(report.Linked, l.dest)
			continue
		case errors.Is(err, os.ErrNotExist):
			if err := os.Symlink(l.target, l.dest); err != nil {
				return report, fmt.Errorf("link %s: %w", l.name, err)
			}
			report.Linked = append(report.Linked, l.dest)
			continue
		}

		// Something else occupies the destination.
		if !overwrite {
			m.log.Debug().Str("dest", l.dest).Msg("destination exists, not overwriting")
			report.Skipped = append(report.Skipped, l.dest)
			continue
		}
		if err := swapSymlink(l.target, l.dest); err != nil {
			return report, fmt.Errorf("link %s: %w", l.name, err)
		}
		report.Linked = append(report.Linked, l.dest)
	}

	m.log.Info().Str("app", app).Str("version", v).Int("linked", len(report.Linked)).Int("skipped", len(report.Skipped)).Msg("linked binaries")
	return report, nil
}

// UnlinkBinaries removes the links of the version recorded in the
// lockfile. Destinations that are not symlinks into the app's install
// root are left alone.
func (m *Manager) UnlinkBinaries(ctx context.Context, app string) error {
	v, ok, err := m.lock.FindInstalledVersion(app)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInLockfile, app)
	}

	links, err := m.links(ctx, app, v)
	if err != nil {
		return err
	}

	root := m.dirs.InstallationRoot(app) + string(filepath.Separator)
	for _, l := range links {
		current, err := os.Readlink(l.dest)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				m.log.Debug().Str("dest", l.dest).Msg("not a symlink, leaving in place")
			}
			continue
		}
		if !strings.HasPrefix(current, root) {
			m.log.Debug().Str("dest", l.dest).Str("target", current).Msg("link not owned by app, leaving in place")
			continue
		}
		if err := os.Remove(l.dest); err != nil {
			return fmt.Errorf("unlink %s: %w", l.name, err)
		}
	}
	return nil
}

// isSelf reports whether dest is, or resolves to, the running executable.
func (m *Manager) isSelf(dest string) bool {
	if filepath.Clean(dest) == m.self {
		return true
	}
	if _, err := os.Lstat(dest); err != nil {
		return false
	}
	return canonical(dest) == m.self
}

// swapSymlink replaces dest with a symlink to target in one rename.
func swapSymlink(target, dest string) error {
	tmp := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".cyrene-"+uuid.New().String())
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
