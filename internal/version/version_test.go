package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		semver bool
	}{
		{"1.2.3", true},
		{"0.0.1-rc.1", true},
		{"1.2.3+build.5", true},
		{"v1.2.3", false},
		{"1.2", false},
		{"jdk-21+35", false},
		{"2024.06", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := Parse(tt.in)
			assert.Equal(t, tt.semver, v.IsSemver())
			assert.Equal(t, tt.in, v.String())
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Positive(t, Compare(Parse("1.10.0"), Parse("1.9.0")))
	assert.Negative(t, Compare(Parse("1.0.0-rc.1"), Parse("1.0.0")))
	assert.Zero(t, Compare(Parse("1.0.0"), Parse("1.0.0")))
	assert.Positive(t, Compare(Parse("0.0.1"), Parse("zzz")), "semver sorts above opaque")
	assert.Positive(t, Compare(Parse("b"), Parse("a")))
}

func TestSortDescending(t *testing.T) {
	in := []string{"1.9.0", "", "nightly", "2.1.0", "  ", "2.0.0", "1.10.0", "2.1.0", "beta"}
	want := []string{"2.1.0", "2.0.0", "1.10.0", "1.9.0", "nightly", "beta"}
	assert.Equal(t, want, SortDescending(in))
	assert.Empty(t, SortDescending(nil))
}

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
	}{
		{"", Latest},
		{"latest", Latest},
		{"1.2.3", Exact},
		{"^1.2.0", Range},
		{"~0.3", Range},
		{">= 1.0, < 2", Range},
		{"1.x", Range},
		{"jdk-21+35", Exact},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.kind, ParseRequirement(tt.in).Kind)
		})
	}
}

func TestRequirementMatches(t *testing.T) {
	rng := ParseRequirement("^1.2.0")
	assert.True(t, rng.Matches(Parse("1.9.9")))
	assert.False(t, rng.Matches(Parse("2.0.0")))
	assert.False(t, rng.Matches(Parse("nightly")))

	opaque := ParseRequirement("nightly")
	assert.True(t, opaque.Matches(Parse("nightly")))
	assert.False(t, opaque.Matches(Parse("nightly-2")))

	assert.True(t, ParseRequirement("").Matches(Parse("anything")))
	assert.False(t, Requirement{Kind: Range}.Matches(Parse("1.0.0")))
}

func TestRangeOf(t *testing.T) {
	_, err := RangeOf("not a range")
	assert.Error(t, err)

	r, err := RangeOf("^2")
	assert.NoError(t, err)
	assert.Equal(t, Range, r.Kind)
	assert.Equal(t, "^2", r.String())
}

func TestSplitSpec(t *testing.T) {
	app, req := SplitSpec("node@^22")
	assert.Equal(t, "node", app)
	assert.Equal(t, "^22", req)

	app, req = SplitSpec("node")
	assert.Equal(t, "node", app)
	assert.Empty(t, req)
}
