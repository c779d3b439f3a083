// Package version parses version strings and resolves version requirements
// against the cached list of upstream versions.
//
// A Version is either strict semver or an opaque token. Opaque versions
// take no part in range matching and compare only by string.
package version

import (
	"errors"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNoVersions means upstream reported no versions at all.
	ErrNoVersions = errors.New("no versions available")

	// ErrNoMatchingVersion means no known version satisfies a requirement.
	ErrNoMatchingVersion = errors.New("no matching version")

	// ErrNotSemver is returned where a semantic version is required.
	ErrNotSemver = errors.New("not a semantic version")
)

// Version is a parsed version string.
type Version struct {
	raw string
	sv  *semver.Version
}

// Parse parses s as strict semver. Anything else becomes an opaque Version.
func Parse(s string) Version {
	v := Version{raw: s}
	if sv, err := semver.StrictNewVersion(s); err == nil {
		v.sv = sv
	}
	return v
}

func (v Version) String() string { return v.raw }

// IsSemver reports whether v parsed as a semantic version.
func (v Version) IsSemver() bool { return v.sv != nil }

// Semver returns the semantic version, or nil for an opaque version.
func (v Version) Semver() *semver.Version { return v.sv }

// Compare orders two versions. Semantic versions compare by precedence and
// sort above opaque ones. Opaque versions compare lexicographically.
func Compare(a, b Version) int {
	switch {
	case a.sv != nil && b.sv != nil:
		return a.sv.Compare(b.sv)
	case a.sv != nil:
		return 1
	case b.sv != nil:
		return -1
	}
	return strings.Compare(a.raw, b.raw)
}

// SortDescending returns the non-blank entries of raw, newest first and
// without duplicates.
func SortDescending(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	parsed := make([]Version, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		parsed = append(parsed, Parse(s))
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return Compare(parsed[i], parsed[j]) > 0
	})

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.raw
	}
	return out
}
