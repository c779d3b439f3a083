package service

import (
	"context"
	"fmt"
)

// Entry is one installed version as shown by list.
type Entry struct {
	App     string
	Version string
	Path    string
	Linked  bool
}

// List returns every installed version and whether the lockfile links it.
func (s *Service) List() ([]Entry, error) {
	installed, err := s.apps.Installed()
	if err != nil {
		return nil, err
	}
	locked, err := s.lock.Versions()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(installed))
	for _, in := range installed {
		out = append(out, Entry{
			App:     in.App,
			Version: in.Version,
			Path:    in.Path,
			Linked:  locked[in.App] == in.Version,
		})
	}
	return out, nil
}

// VersionInfo is one upstream version of an app.
type VersionInfo struct {
	Version   string
	Installed bool
	Linked    bool
}

// Versions returns the cached upstream versions of app, newest first,
// fetching them when the cache has none.
func (s *Service) Versions(ctx context.Context, app string) ([]VersionInfo, error) {
	if err := s.requireApp(app); err != nil {
		return nil, err
	}
	versions, err := s.resolver.Versions(ctx, app)
	if err != nil {
		return nil, err
	}
	linked, err := s.linked(app)
	if err != nil {
		return nil, err
	}

	out := make([]VersionInfo, len(versions))
	for i, v := range versions {
		out[i] = VersionInfo{Version: v, Installed: s.apps.IsInstalled(app, v), Linked: v == linked}
	}
	return out, nil
}

// Refreshed reports how many versions a refresh stored for an app.
type Refreshed struct {
	App   string
	Count int
}

// Refresh overwrites the cached versions of each app from its plugin.
// With no apps, every plugin in plugins_dir is refreshed.
func (s *Service) Refresh(ctx context.Context, names []string) ([]Refreshed, error) {
	if len(names) == 0 {
		var err error
		names, err = s.dirs.PluginNames()
		if err != nil {
			return nil, err
		}
	}

	out := make([]Refreshed, 0, len(names))
	for _, app := range names {
		if err := s.requireApp(app); err != nil {
			return out, err
		}
		versions, err := s.resolver.Refresh(ctx, app)
		if err != nil {
			return out, fmt.Errorf("refresh %s: %w", app, err)
		}
		s.log.Info().Str("app", app).Int("versions", len(versions)).Msg("refreshed versions")
		out = append(out, Refreshed{App: app, Count: len(versions)})
	}
	return out, nil
}
