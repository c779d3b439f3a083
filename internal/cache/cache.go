// Package cache persists the last known upstream versions of every app in
// a TOML document:
//
//	[versions]
//	node = ["22.1.0", "22.0.0"]
//
// Entries are replaced wholesale on refresh and never merged.
package cache

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/damillora/cyrene/internal/fsutil"
)

// File is the on-disk shape of the cache.
type File struct {
	Versions map[string][]string `toml:"versions"`
}

// Cache reads and writes the version cache at one path.
type Cache struct {
	path string
}

// New returns a Cache stored at path. The file is created on first write.
func New(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the location of the cache file.
func (c *Cache) Path() string { return c.path }

func (c *Cache) read() (*File, error) {
	f := &File{Versions: map[string][]string{}}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read version cache: %w", err)
	}
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse version cache %s: %w", c.path, err)
	}
	if f.Versions == nil {
		f.Versions = map[string][]string{}
	}
	return f, nil
}

func (c *Cache) write(f *File) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode version cache: %w", err)
	}
	return fsutil.WriteFileAtomic(c.path, data, 0o644)
}

// Get returns the cached versions of app, or nil when there are none.
func (c *Cache) Get(app string) ([]string, error) {
	f, err := c.read()
	if err != nil {
		return nil, err
	}
	return f.Versions[app], nil
}

// Put replaces the cached versions of app.
func (c *Cache) Put(app string, versions []string) error {
	f, err := c.read()
	if err != nil {
		return err
	}
	if versions == nil {
		versions = []string{}
	}
	f.Versions[app] = versions
	return c.write(f)
}

// Apps lists the apps with a cache entry, sorted.
func (c *Cache) Apps() ([]string, error) {
	f, err := c.read()
	if err != nil {
		return nil, err
	}
	apps := make([]string, 0, len(f.Versions))
	for app := range f.Versions {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps, nil
}
