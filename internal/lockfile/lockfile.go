// Package lockfile records which version of each app is linked.
//
// The default lockfile may carry a loaded_lockfile pointer to a project
// lockfile. While the pointer is set, every read and write goes to the
// project file and the default file's own versions table is left alone.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/damillora/cyrene/internal/fsutil"
)

var (
	// ErrUnknownVersion is returned by LoadAll and LoadFile when an entry
	// names a version upstream does not publish.
	ErrUnknownVersion = errors.New("lockfile names an unknown version")

	// ErrLocalLockfile is returned when the project lockfile a pointer names
	// cannot be read.
	ErrLocalLockfile = errors.New("cannot read loaded lockfile")
)

// File is the on-disk lockfile.
type File struct {
	LoadedLockfile string            `toml:"loaded_lockfile,omitempty"`
	Versions       map[string]string `toml:"versions"`
}

// Checker reports whether upstream publishes a version.
type Checker interface {
	Exists(ctx context.Context, app, version string) (bool, error)
}

// Manager reads and writes the default lockfile and follows its pointer.
type Manager struct {
	path string
	log  zerolog.Logger
}

// New returns a Manager for the default lockfile at path.
func New(path string, log zerolog.Logger) *Manager {
	return &Manager{path: path, log: log}
}

// DefaultPath returns the location of the default lockfile.
func (m *Manager) DefaultPath() string { return m.path }

// ReadFile parses the lockfile at path. A missing file reads as empty.
func ReadFile(path string) (*File, error) {
	f := &File{Versions: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read lockfile: %w", err)
	}
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse lockfile %s: %w", path, err)
	}
	if f.Versions == nil {
		f.Versions = map[string]string{}
	}
	return f, nil
}

func writeFile(path string, f *File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode lockfile: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write lockfile %s: %w", path, err)
	}
	return nil
}

// ReadDefault returns the default lockfile as stored.
func (m *Manager) ReadDefault() (*File, error) {
	return ReadFile(m.path)
}

// ActivePath returns the file that currently holds version data.
func (m *Manager) ActivePath() (string, error) {
	def, err := m.ReadDefault()
	if err != nil {
		return "", err
	}
	if def.LoadedLockfile != "" {
		return def.LoadedLockfile, nil
	}
	return m.path, nil
}

// active returns the authoritative file and its path.
func (m *Manager) active() (*File, string, error) {
	def, err := m.ReadDefault()
	if err != nil {
		return nil, "", err
	}
	if def.LoadedLockfile == "" {
		return def, m.path, nil
	}

	local := def.LoadedLockfile
	if _, err := os.Stat(local); err != nil {
		return nil, "", fmt.Errorf("%w %s: %v", ErrLocalLockfile, local, err)
	}
	f, err := ReadFile(local)
	if err != nil {
		return nil, "", fmt.Errorf("%w %s: %v", ErrLocalLockfile, local, err)
	}
	return f, local, nil
}

// Versions returns every app → version pair of the active lockfile.
func (m *Manager) Versions() (map[string]string, error) {
	f, _, err := m.active()
	if err != nil {
		return nil, err
	}
	return f.Versions, nil
}

// FindInstalledVersion returns the version of app recorded in the active
// lockfile. ok is false when app has no entry.
func (m *Manager) FindInstalledVersion(app string) (v string, ok bool, err error) {
	f, path, err := m.active()
	if err != nil {
		return "", false, err
	}
	v, ok = f.Versions[app]
	m.log.Debug().Str("app", app).Str("version", v).Str("lockfile", path).Msg("lockfile lookup")
	return v, ok, nil
}

// Update records v for app in the active lockfile. An empty v removes the entry.
func (m *Manager) Update(app, v string) error {
	f, path, err := m.active()
	if err != nil {
		return err
	}

	if v == "" {
		delete(f.Versions, app)
	} else {
		f.Versions[app] = v
	}
	m.log.Debug().Str("app", app).Str("version", v).Str("lockfile", path).Msg("updating lockfile")
	return writeFile(path, f)
}

// Clear removes app from the active lockfile.
func (m *Manager) Clear(app string) error {
	return m.Update(app, "")
}

// UseLocal points the default lockfile at the project lockfile at path.
// The path must exist and is stored in canonical form. Pointing at the
// default lockfile itself clears the pointer.
func (m *Manager) UseLocal(path string) error {
	canonical, err := canonicalize(path)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrLocalLockfile, path, err)
	}
	if def, err := canonicalize(m.path); err == nil && def == canonical {
		return m.UseDefault()
	}
	return m.setPointer(canonical)
}

// UseDefault clears the pointer.
func (m *Manager) UseDefault() error {
	return m.setPointer("")
}

func (m *Manager) setPointer(target string) error {
	def, err := m.ReadDefault()
	if err != nil {
		return err
	}
	def.LoadedLockfile = target
	m.log.Debug().Str("loaded_lockfile", target).Msg("switching lockfile")
	return writeFile(m.path, def)
}

// LoadAll validates every entry of the active lockfile against checker and
// returns them. The first unknown version fails the whole call.
func (m *Manager) LoadAll(ctx context.Context, checker Checker) (map[string]string, error) {
	f, path, err := m.active()
	if err != nil {
		return nil, err
	}
	return validate(ctx, path, f.Versions, checker)
}

// LoadFile validates the lockfile at path the same way LoadAll does,
// without making it active.
func (m *Manager) LoadFile(ctx context.Context, path string, checker Checker) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrLocalLockfile, path, err)
	}
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return validate(ctx, path, f.Versions, checker)
}

// LoadDefault validates the default lockfile's own versions table, ignoring
// any pointer.
func (m *Manager) LoadDefault(ctx context.Context, checker Checker) (map[string]string, error) {
	def, err := m.ReadDefault()
	if err != nil {
		return nil, err
	}
	return validate(ctx, m.path, def.Versions, checker)
}

func validate(ctx context.Context, path string, versions map[string]string, checker Checker) (map[string]string, error) {
	apps := make([]string, 0, len(versions))
	for app := range versions {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	for _, app := range apps {
		v := versions[app]
		ok, err := checker.Exists(ctx, app, v)
		if err != nil {
			return nil, fmt.Errorf("check %s@%s from %s: %w", app, v, path, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s@%s in %s", ErrUnknownVersion, app, v, path)
		}
	}
	return versions, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
