// Package filter selects benchmark cases by name.
//
// Patterns are matched against "<group>/<case>". Glob patterns treat '*' as any run of
// characters, '/' included, and every other character literally. Regex patterns use RE2
// syntax and must match the whole name: "Group1" does not match "Group1/Case".
package filter

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPattern is returned for patterns that cannot be compiled.
var ErrInvalidPattern = errors.New("invalid filter pattern")

// Pattern matches full case names.
type Pattern interface {
	Match(name string) bool
	String() string
}

// globPattern is a '*'-only wildcard pattern.
type globPattern struct {
	pattern string
}

// Glob returns a glob pattern. Every string is a valid glob.
func Glob(pattern string) Pattern {
	return globPattern{pattern: pattern}
}

func (g globPattern) String() string {
	return "glob:" + g.pattern
}

// Match reports whether name matches the whole pattern.
//
// This is the classic greedy wildcard match: on a mismatch it backtracks to the most
// recent '*' and lets it absorb one more character, which is linear in practice.
func (g globPattern) Match(name string) bool {
	p := g.pattern
	pi, ni := 0, 0
	star, mark := -1, 0
	for ni < len(name) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, ni
			pi++
		case pi < len(p) && p[pi] == name[ni]:
			pi++
			ni++
		case star >= 0:
			pi = star + 1
			mark++
			ni = mark
		default:
			return false
		}
	}
	// Trailing stars match the empty remainder.
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// regexPattern is an anchored regular expression.
type regexPattern struct {
	source string
	re     *regexp.Regexp
}

// Regex compiles an anchored regular expression pattern.
func Regex(pattern string) (Pattern, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "regex %q", pattern), ErrInvalidPattern)
	}
	return regexPattern{source: pattern, re: re}, nil
}

func (r regexPattern) String() string {
	return "regex:" + r.source
}

func (r regexPattern) Match(name string) bool {
	return r.re.MatchString(name)
}
