package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind distinguishes the three shapes of a requirement.
type Kind int

const (
	Latest Kind = iota
	Exact
	Range
)

func (k Kind) String() string {
	switch k {
	case Latest:
		return "latest"
	case Exact:
		return "exact"
	case Range:
		return "range"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Requirement is what a user asked for: nothing, a specific version, or a
// semver constraint.
type Requirement struct {
	Kind       Kind
	Raw        string
	constraint *semver.Constraints
}

// ParseRequirement classifies s. An empty string is Latest, a strict semver
// is Exact, a valid constraint expression is Range and anything else is an
// Exact opaque token.
func ParseRequirement(s string) Requirement {
	s = strings.TrimSpace(s)
	if s == "" || s == "latest" {
		return Requirement{Kind: Latest}
	}
	if _, err := semver.StrictNewVersion(s); err == nil {
		return Requirement{Kind: Exact, Raw: s}
	}
	if c, err := semver.NewConstraint(s); err == nil {
		return Requirement{Kind: Range, Raw: s, constraint: c}
	}
	return Requirement{Kind: Exact, Raw: s}
}

// RangeOf builds a Range requirement from a constraint expression.
func RangeOf(expr string) (Requirement, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return Requirement{}, fmt.Errorf("invalid range %q: %w", expr, err)
	}
	return Requirement{Kind: Range, Raw: expr, constraint: c}, nil
}

// Matches reports whether v satisfies r. Latest matches everything, Exact
// compares strings and Range only matches semantic versions.
func (r Requirement) Matches(v Version) bool {
	switch r.Kind {
	case Latest:
		return true
	case Exact:
		return v.raw == r.Raw
	case Range:
		return v.sv != nil && r.constraint != nil && r.constraint.Check(v.sv)
	}
	return false
}

// LiteralIn reports whether versions holds r's text verbatim. Upstream
// tokens such as "22" also parse as constraints, and the exact entry wins
// over range matching.
func (r Requirement) LiteralIn(versions []string) bool {
	if r.Kind == Latest {
		return false
	}
	for _, v := range versions {
		if v == r.Raw {
			return true
		}
	}
	return false
}

func (r Requirement) String() string {
	if r.Kind == Latest {
		return "latest"
	}
	return r.Raw
}

// SplitSpec splits "app@req" into its parts. The requirement is empty when
// no "@" is present.
func SplitSpec(spec string) (app, req string) {
	app, req, _ = strings.Cut(spec, "@")
	return app, req
}
