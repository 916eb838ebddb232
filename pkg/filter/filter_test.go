package filter_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/filter"
)

func TestGlob(t *testing.T) {
	testCases := []struct {
		pattern string
		name    string
		match   bool
	}{
		{pattern: "Group1/*", name: "Group1/Case1", match: true},
		{pattern: "Group1/*", name: "Group10/Case1", match: false},
		{pattern: "*", name: "a/b/c", match: true},
		{pattern: "*", name: "", match: true},
		{pattern: "*/Case2", name: "Group1/Case2", match: true},
		{pattern: "*/Case2", name: "Group1/Case20", match: false},
		{pattern: "G*1/C*", name: "Group/x1/Case", match: true},
		{pattern: "a**b", name: "ab", match: true},
		{pattern: "a*b*c", name: "aXbYbZc", match: true},
		{pattern: "a*b*c", name: "aXbYbZ", match: false},
		{pattern: "a?c", name: "abc", match: false},
		{pattern: "a?c", name: "a?c", match: true},
		{pattern: "exact", name: "exact", match: true},
		{pattern: "exact", name: "exactly", match: false},
		{pattern: "", name: "", match: true},
		{pattern: "", name: "x", match: false},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern+" vs "+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, filter.Glob(tc.pattern).Match(tc.name))
		})
	}
}

func TestRegex(t *testing.T) {
	t.Run("Full Match Only", func(t *testing.T) {
		p, err := filter.Regex("Group1")
		require.NoError(t, err)
		assert.False(t, p.Match("Group1/Case1"), "regex must not act as a substring search")
		assert.True(t, p.Match("Group1"))
	})

	t.Run("Alternation Is Anchored As A Whole", func(t *testing.T) {
		p, err := filter.Regex("A/x|B/y")
		require.NoError(t, err)
		assert.True(t, p.Match("A/x"))
		assert.True(t, p.Match("B/y"))
		assert.False(t, p.Match("A/xB/y"))
		assert.False(t, p.Match("ZA/x"))
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := filter.Regex("Group(")
		require.Error(t, err)
		assert.True(t, errors.Is(err, filter.ErrInvalidPattern))
	})
}

func registry(t *testing.T) []*bench.Case {
	t.Helper()
	r := bench.NewRegistry()
	for _, name := range []string{"Group1/Case1", "Group1/Case2", "Group2/Case1", "Group2/Case2", "Group1/Case3"} {
		group, caseName, _ := strings.Cut(name, "/")
		require.NoError(t, r.Register(bench.Case{Group: group, Name: caseName, Op: func(*bench.Context) error { return nil }}))
	}
	return r.Cases()
}

func fullNames(cases []*bench.Case) []string {
	var out []string
	for _, c := range cases {
		out = append(out, c.FullName())
	}
	return out
}

func TestSelect(t *testing.T) {
	cases := registry(t)

	t.Run("No Filter Selects Everything In Order", func(t *testing.T) {
		selected := filter.Select(cases, filter.Filter{})
		assert.Len(t, selected, len(cases))
		assert.Equal(t, fullNames(cases), fullNames(selected))
	})

	t.Run("Include Group", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{IncludeGlobs: []string{"Group1/*"}})
		require.NoError(t, err)

		selected := filter.Select(cases, f)
		for _, c := range selected {
			assert.True(t, strings.HasPrefix(c.FullName(), "Group1/"))
		}
		assert.Equal(t, []string{"Group1/Case1", "Group1/Case2", "Group1/Case3"}, fullNames(selected))
	})

	t.Run("Exclude Applied After Include", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{IncludeGlobs: []string{"Group1/*"}, ExcludeGlobs: []string{"*/Case2"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Group1/Case1", "Group1/Case3"}, fullNames(filter.Select(cases, f)))
	})

	t.Run("Exclude Only", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{ExcludeRegexes: []string{`Group2/.*`}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Group1/Case1", "Group1/Case2", "Group1/Case3"}, fullNames(filter.Select(cases, f)))
	})

	t.Run("Any Include Suffices", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{IncludeGlobs: []string{"Group2/Case1"}, IncludeRegexes: []string{`Group1/Case[13]`}})
		require.NoError(t, err)
		assert.Equal(t, []string{"Group1/Case1", "Group2/Case1", "Group1/Case3"}, fullNames(filter.Select(cases, f)))
	})

	t.Run("Nothing Matches", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{IncludeGlobs: []string{"Nope/*"}})
		require.NoError(t, err)
		assert.Empty(t, filter.Select(cases, f))
	})

	t.Run("Malformed Regex Fails The Build", func(t *testing.T) {
		_, err := filter.Build(filter.Spec{ExcludeRegexes: []string{"[a-"}})
		assert.True(t, errors.Is(err, filter.ErrInvalidPattern))
	})

	t.Run("Select Is Deterministic", func(t *testing.T) {
		f, err := filter.Build(filter.Spec{IncludeGlobs: []string{"*Case1"}})
		require.NoError(t, err)
		assert.Equal(t, fullNames(filter.Select(cases, f)), fullNames(filter.Select(cases, f)))
	})
}
