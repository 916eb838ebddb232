// Package stats reduces measurement series into summary statistics.
//
// Derived quantities are produced by explicit transforms on a Series, never after the
// reduction: the mean of per-iteration values is a mean of ratios, and that is the
// quantity every report states.
package stats

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalidArgument is returned for inputs outside the contract of this package.
var ErrInvalidArgument = errors.New("invalid argument")

// Series is the ordered sequence of per-sample observations of one (case, channel) pair.
// Iterations[i] is the number of inner iterations that produced Values[i].
type Series struct {
	Values     []float64
	Iterations []int
}

// NewSeries returns a series where every sample ran the same number of iterations.
func NewSeries(values []float64, iterations int) Series {
	its := make([]int, len(values))
	for i := range its {
		its[i] = iterations
	}
	return Series{Values: values, Iterations: its}
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Values)
}

// Validate checks that the series is non-empty and that the iteration counts line up.
func (s Series) Validate() error {
	if len(s.Values) == 0 {
		return errors.Wrap(ErrInvalidArgument, "empty series")
	}
	if len(s.Iterations) != len(s.Values) {
		return errors.Wrapf(ErrInvalidArgument, "%d values but %d iteration counts", len(s.Values), len(s.Iterations))
	}
	return nil
}

// PerIteration divides each sample's aggregate by its iteration count.
func PerIteration(s Series) (Series, error) {
	if err := s.Validate(); err != nil {
		return Series{}, err
	}

	out := Series{Values: make([]float64, s.Len()), Iterations: ones(s.Len())}
	for i, v := range s.Values {
		if s.Iterations[i] <= 0 {
			return Series{}, errors.Wrapf(ErrInvalidArgument, "sample %d has %d iterations", i, s.Iterations[i])
		}
		out.Values[i] = v / float64(s.Iterations[i])
	}
	return out, nil
}

// RatePerSecond divides each sample's aggregate by the matching sample duration in seconds.
func RatePerSecond(s Series, durations Series) (Series, error) {
	if err := s.Validate(); err != nil {
		return Series{}, err
	}
	if durations.Len() != s.Len() {
		return Series{}, errors.Wrapf(ErrInvalidArgument, "%d values but %d durations", s.Len(), durations.Len())
	}

	out := Series{Values: make([]float64, s.Len()), Iterations: append([]int(nil), s.Iterations...)}
	for i, v := range s.Values {
		d := durations.Values[i]
		if d <= 0 {
			return Series{}, errors.Wrapf(ErrInvalidArgument, "sample %d has non-positive duration %g", i, d)
		}
		out.Values[i] = v / d
	}
	return out, nil
}

// Throughput inverts a per-iteration time series into iterations per second.
func Throughput(perIteration Series) (Series, error) {
	if err := perIteration.Validate(); err != nil {
		return Series{}, err
	}

	out := Series{Values: make([]float64, perIteration.Len()), Iterations: append([]int(nil), perIteration.Iterations...)}
	for i, v := range perIteration.Values {
		if v <= 0 {
			return Series{}, errors.Wrapf(ErrInvalidArgument, "sample %d has non-positive time %g", i, v)
		}
		out.Values[i] = 1 / v
	}
	return out, nil
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
