package apps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/damillora/cyrene/internal/config"
	"github.com/damillora/cyrene/internal/lockfile"
	"github.com/damillora/cyrene/internal/plugin"
	"github.com/damillora/cyrene/internal/version"
)

// Installation is one installed app version.
type Installation struct {
	App     string
	Version string
	Path    string
}

// Config holds the dependencies of a Manager.
type Config struct {
	Dirs         *config.Dirs
	Lockfile     *lockfile.Manager
	Capabilities plugin.Capabilities
	// SelfPath is the cyrene executable. Defaults to os.Executable.
	SelfPath string
	Logger   zerolog.Logger
}

// Manager owns installed versions, plugin hosts and binary links.
type Manager struct {
	dirs *config.Dirs
	lock *lockfile.Manager
	caps plugin.Capabilities
	self string
	log  zerolog.Logger

	mu    sync.Mutex
	hosts map[string]*plugin.Host
}

// NewManager creates a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dirs == nil {
		return nil, fmt.Errorf("dirs are required")
	}
	if cfg.Lockfile == nil {
		return nil, fmt.Errorf("lockfile manager is required")
	}

	self := cfg.SelfPath
	if self == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate cyrene executable: %w", err)
		}
		self = exe
	}

	return &Manager{
		dirs:  cfg.Dirs,
		lock:  cfg.Lockfile,
		caps:  cfg.Capabilities,
		self:  canonical(self),
		log:   cfg.Logger,
		hosts: make(map[string]*plugin.Host),
	}, nil
}

// Close releases every loaded plugin host.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for app, h := range m.hosts {
		h.Close()
		delete(m.hosts, app)
	}
}

// PackageExists reports whether app has a plugin script.
func (m *Manager) PackageExists(app string) bool {
	if config.ValidateName("app", app) != nil {
		return false
	}
	info, err := os.Stat(m.dirs.PluginPath(app))
	return err == nil && info.Mode().IsRegular()
}

// Host returns the loaded plugin host for app, loading it on first use.
func (m *Manager) Host(ctx context.Context, app string) (*plugin.Host, error) {
	if err := config.ValidateName("app", app); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.hosts[app]; ok {
		return h, nil
	}
	if !m.PackageExists(app) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, app)
	}

	caps := m.caps
	caps.Logger = m.log.With().Str("app", app).Logger()
	h, err := plugin.Load(ctx, app, m.dirs.PluginPath(app), caps)
	if err != nil {
		return nil, err
	}
	m.hosts[app] = h
	return h, nil
}

// ListVersions asks the plugin for every upstream version, newest first.
func (m *Manager) ListVersions(ctx context.Context, app string) ([]string, error) {
	h, err := m.Host(ctx, app)
	if err != nil {
		return nil, err
	}
	return h.GetVersions(ctx)
}

// IsInstalled reports whether app@v has an install directory.
func (m *Manager) IsInstalled(app, v string) bool {
	if config.ValidateName("app", app) != nil || config.ValidateName("version", v) != nil {
		return false
	}
	info, err := os.Stat(m.dirs.InstallationPath(app, v))
	return err == nil && info.IsDir()
}

// InstalledVersions lists the installed versions of app, newest first.
func (m *Manager) InstalledVersions(app string) ([]string, error) {
	if err := config.ValidateName("app", app); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(m.dirs.InstallationRoot(app))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", app, err)
	}

	var raw []string
	for _, e := range entries {
		if e.IsDir() {
			raw = append(raw, e.Name())
		}
	}
	return version.SortDescending(raw), nil
}

// Installed scans apps_dir for every installed version, ordered by app name
// and then newest version first.
func (m *Manager) Installed() ([]Installation, error) {
	entries, err := os.ReadDir(m.dirs.AppsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read apps dir: %w", err)
	}

	var apps []string
	for _, e := range entries {
		if e.IsDir() {
			apps = append(apps, e.Name())
		}
	}
	sort.Strings(apps)

	var out []Installation
	for _, app := range apps {
		versions, err := m.InstalledVersions(app)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			out = append(out, Installation{App: app, Version: v, Path: m.dirs.InstallationPath(app, v)})
		}
	}
	return out, nil
}

// InstallVersion creates the install directory and runs install_app in it.
// If the hook fails, the directories created here are removed again.
func (m *Manager) InstallVersion(ctx context.Context, app, v string) error {
	if err := config.ValidateName("version", v); err != nil {
		return err
	}
	h, err := m.Host(ctx, app)
	if err != nil {
		return err
	}

	dir := m.dirs.InstallationPath(app, v)
	if _, err := os.Lstat(dir); err == nil {
		return fmt.Errorf("%w: %s@%s", ErrAlreadyInstalled, app, v)
	}

	root := m.dirs.InstallationRoot(app)
	_, statErr := os.Stat(root)
	createdRoot := errors.Is(statErr, os.ErrNotExist)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}

	m.log.Info().Str("app", app).Str("version", v).Str("dir", dir).Msg("installing")
	if err := h.Install(ctx, v, dir); err != nil {
		cleanup := dir
		if createdRoot {
			cleanup = root
		}
		if rmErr := os.RemoveAll(cleanup); rmErr != nil {
			m.log.Warn().Err(rmErr).Str("dir", cleanup).Msg("failed to clean up install dir")
		}
		return err
	}
	return nil
}

// PostInstallVersion runs post_install for an installed version. A script
// without post_install has nothing to do here.
func (m *Manager) PostInstallVersion(ctx context.Context, app, v string) error {
	if !m.IsInstalled(app, v) {
		return fmt.Errorf("%w: %s@%s", ErrVersionNotInstalled, app, v)
	}
	h, err := m.Host(ctx, app)
	if err != nil {
		return err
	}
	err = h.PostInstall(ctx, v, m.dirs.InstallationPath(app, v))
	if errors.Is(err, plugin.ErrMissingEntryPoint) {
		m.log.Debug().Str("app", app).Msg("no post_install hook")
		return nil
	}
	return err
}

// UninstallVersion deletes one version. The app directory goes too once it
// is empty.
func (m *Manager) UninstallVersion(_ context.Context, app, v string) error {
	if !m.IsInstalled(app, v) {
		return fmt.Errorf("%w: %s@%s", ErrVersionNotInstalled, app, v)
	}

	m.log.Info().Str("app", app).Str("version", v).Msg("removing")
	if err := os.RemoveAll(m.dirs.InstallationPath(app, v)); err != nil {
		return fmt.Errorf("remove %s@%s: %w", app, v, err)
	}

	root := m.dirs.InstallationRoot(app)
	if entries, err := os.ReadDir(root); err == nil && len(entries) == 0 {
		if err := os.Remove(root); err != nil {
			m.log.Debug().Err(err).Str("dir", root).Msg("could not remove empty app dir")
		}
	}
	return nil
}

// UninstallAll deletes every installed version of app.
func (m *Manager) UninstallAll(_ context.Context, app string) error {
	if err := config.ValidateName("app", app); err != nil {
		return err
	}
	root := m.dirs.InstallationRoot(app)
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("%w: %s", ErrVersionNotInstalled, app)
	}

	m.log.Info().Str("app", app).Msg("removing all versions")
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("remove %s: %w", app, err)
	}
	return nil
}

// UpdateLockfile records v for app, or clears the entry when v is empty.
func (m *Manager) UpdateLockfile(_ context.Context, app, v string) error {
	if v == "" {
		return m.lock.Clear(app)
	}
	return m.lock.Update(app, v)
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}
