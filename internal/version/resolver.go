package version

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Store persists the newest-first version list of each app.
type Store interface {
	Get(app string) ([]string, error)
	Put(app string, versions []string) error
}

// Lister asks an app's plugin for its upstream versions, newest first.
type Lister interface {
	ListVersions(ctx context.Context, app string) ([]string, error)
}

// Resolver turns requirements into concrete versions.
type Resolver struct {
	store  Store
	lister Lister
	log    zerolog.Logger
}

// NewResolver returns a Resolver reading from store and refilling it from lister.
func NewResolver(store Store, lister Lister, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, lister: lister, log: log}
}

// Refresh replaces the cached versions of app with a fresh plugin listing.
func (r *Resolver) Refresh(ctx context.Context, app string) ([]string, error) {
	versions, err := r.lister.ListVersions(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", app, err)
	}
	versions = SortDescending(versions)
	if err := r.store.Put(app, versions); err != nil {
		return nil, fmt.Errorf("cache versions of %s: %w", app, err)
	}
	r.log.Debug().Str("app", app).Int("count", len(versions)).Msg("refreshed version cache")
	return versions, nil
}

// Versions returns the cached versions of app, filling the cache on a miss.
func (r *Resolver) Versions(ctx context.Context, app string) ([]string, error) {
	versions, err := r.store.Get(app)
	if err != nil {
		return nil, fmt.Errorf("read version cache: %w", err)
	}
	if len(versions) > 0 {
		return versions, nil
	}
	r.log.Debug().Str("app", app).Msg("version cache miss")
	return r.Refresh(ctx, app)
}

// Resolve picks the version of app that satisfies req.
//
// An exact semantic version is returned as is, without consulting the
// cache. Latest is the first cached entry. A range yields the highest
// cached semantic version inside it, unless the cache holds the range text
// itself as a version. An opaque exact token must appear in the cache
// verbatim.
func (r *Resolver) Resolve(ctx context.Context, app string, req Requirement) (string, error) {
	if req.Kind == Exact && Parse(req.Raw).IsSemver() {
		return req.Raw, nil
	}

	versions, err := r.Versions(ctx, app)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoVersions, app)
	}

	if req.Kind == Latest {
		return versions[0], nil
	}
	if req.LiteralIn(versions) {
		return req.Raw, nil
	}

	var best *Version
	for _, s := range versions {
		v := Parse(s)
		if !req.Matches(v) {
			continue
		}
		if best == nil || Compare(v, *best) > 0 {
			best = &v
		}
	}
	if best == nil {
		return "", fmt.Errorf("%w: %s@%s", ErrNoMatchingVersion, app, req)
	}
	return best.raw, nil
}

// Exists reports whether upstream publishes v for app. A miss triggers one
// refresh so a stale cache does not reject a new release.
func (r *Resolver) Exists(ctx context.Context, app, v string) (bool, error) {
	versions, err := r.Versions(ctx, app)
	if err != nil {
		return false, err
	}
	if contains(versions, v) {
		return true, nil
	}

	versions, err = r.Refresh(ctx, app)
	if err != nil {
		return false, err
	}
	return contains(versions, v), nil
}

// LatestCompatible returns the newest cached version on current's release line.
func (r *Resolver) LatestCompatible(ctx context.Context, app, current string) (string, error) {
	req, err := CompatibleRange(current)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, app, req)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
