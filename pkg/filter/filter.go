package filter

import (
	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/streams"
)

// Filter is an include/exclude pattern pair.
//
// A name survives iff (no include patterns OR it matches at least one include pattern)
// AND it matches no exclude pattern.
type Filter struct {
	Include []Pattern
	Exclude []Pattern
}

// Spec is the textual form of a filter, as given on the command line.
type Spec struct {
	IncludeGlobs   []string
	ExcludeGlobs   []string
	IncludeRegexes []string
	ExcludeRegexes []string
}

// Build compiles a Spec. Globs come before regexes within each list.
func Build(spec Spec) (Filter, error) {
	var f Filter
	for _, g := range spec.IncludeGlobs {
		f.Include = append(f.Include, Glob(g))
	}
	for _, g := range spec.ExcludeGlobs {
		f.Exclude = append(f.Exclude, Glob(g))
	}
	for _, source := range spec.IncludeRegexes {
		p, err := Regex(source)
		if err != nil {
			return Filter{}, err
		}
		f.Include = append(f.Include, p)
	}
	for _, source := range spec.ExcludeRegexes {
		p, err := Regex(source)
		if err != nil {
			return Filter{}, err
		}
		f.Exclude = append(f.Exclude, p)
	}
	return f, nil
}

// Match applies the filter to a full name.
func (f Filter) Match(name string) bool {
	if len(f.Include) > 0 && !anyMatch(f.Include, name) {
		return false
	}
	return !anyMatch(f.Exclude, name)
}

// Select returns the cases that survive the filter, in their original order.
func Select(cases []*bench.Case, f Filter) []*bench.Case {
	selected := streams.Filter(streams.FromSlice(cases), func(c *bench.Case) bool {
		return f.Match(c.FullName())
	})
	return streams.Collect(selected)
}

func anyMatch(patterns []Pattern, name string) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
