package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// IsMajorCompatible reports whether b is on the same release line as a.
// For 0.x versions the line is MAJOR.MINOR, otherwise it is MAJOR.
// Opaque versions are never compatible with anything.
func IsMajorCompatible(a, b string) bool {
	av, bv := Parse(a).sv, Parse(b).sv
	if av == nil || bv == nil {
		return false
	}
	if av.Major() != bv.Major() {
		return false
	}
	if av.Major() == 0 {
		return av.Minor() == bv.Minor()
	}
	return true
}

// CompatibleRange returns the Range requirement covering v and every later
// version on the same release line.
func CompatibleRange(v string) (Requirement, error) {
	sv := Parse(v).sv
	if sv == nil {
		return Requirement{}, fmt.Errorf("%w: %q", ErrNotSemver, v)
	}

	var upper semver.Version
	if sv.Major() == 0 {
		upper = sv.IncMinor()
	} else {
		upper = sv.IncMajor()
	}
	return RangeOf(fmt.Sprintf(">= %s, < %s", sv.String(), upper.String()))
}
