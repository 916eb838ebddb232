package bench

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/streams"
)

// Param is one named parameter value of a case.
type Param struct {
	Name  string
	Value any
}

// String formats the value the way it appears in identities and reports.
func (p Param) String() string {
	return fmt.Sprint(p.Value)
}

// Params is an ordered set of parameters. Declaration order is preserved everywhere.
type Params []Param

// ID returns the parameter-set identifier, "k1=v1, k2=v2" in declaration order.
// It is empty when there are no parameters.
func (ps Params) ID() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.Name + "=" + p.String()
	}
	return strings.Join(parts, ", ")
}

// Get returns the value of the named parameter.
func (ps Params) Get(name string) (any, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// clone returns a copy that does not alias ps.
func (ps Params) clone() Params {
	if len(ps) == 0 {
		return nil
	}
	out := make(Params, len(ps))
	copy(out, ps)
	return out
}

func (ps Params) validate() error {
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if p.Name == "" {
			return errors.Wrap(ErrInvalidCase, "parameter with empty name")
		}
		if _, ok := seen[p.Name]; ok {
			return errors.Wrapf(ErrInvalidCase, "parameter %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Axis is one dimension of a parameter sweep.
type Axis struct {
	Name   string
	Values []any
}

// Product lazily generates the cartesian product of the axes. The last axis varies
// fastest. Axes without values are skipped; with no effective axes the stream yields a
// single empty parameter set.
func Product(axes ...Axis) streams.Stream[Params] {
	effective := make([]Axis, 0, len(axes))
	for _, axis := range axes {
		if len(axis.Values) > 0 {
			effective = append(effective, axis)
		}
	}

	indices := make([]int, len(effective))
	exhausted := false
	return streams.Generate(func() (Params, bool) {
		if exhausted {
			return nil, false
		}

		var current Params
		for i, axis := range effective {
			current = append(current, Param{Name: axis.Name, Value: axis.Values[indices[i]]})
		}

		// Advance like an odometer, rightmost digit first.
		exhausted = true
		for i := len(effective) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(effective[i].Values) {
				exhausted = false
				break
			}
			indices[i] = 0
		}
		return current, true
	})
}
