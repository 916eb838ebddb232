package stats

import (
	"math"
	"slices"

	"github.com/cockroachdb/errors"
	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidenceLevel is the confidence level of the mean's interval.
const DefaultConfidenceLevel = 0.95

// DefaultPercentiles are reported when no percentiles are configured.
var DefaultPercentiles = []float64{50, 90, 99}

// Options configures Compute.
type Options struct {
	// Percentiles to report, each in [0, 100].
	Percentiles []float64
	// ConfidenceLevel of the mean's interval, in (0, 1).
	ConfidenceLevel float64
}

// DefaultOptions returns the default percentiles at the default confidence level.
func DefaultOptions() Options {
	return Options{
		Percentiles:     slices.Clone(DefaultPercentiles),
		ConfidenceLevel: DefaultConfidenceLevel,
	}
}

// Validate checks the options. Callers validate once before any sampling starts.
func (o Options) Validate() error {
	for _, p := range o.Percentiles {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return errors.Wrapf(ErrInvalidArgument, "percentile %g is outside [0, 100]", p)
		}
	}
	if math.IsNaN(o.ConfidenceLevel) || o.ConfidenceLevel <= 0 || o.ConfidenceLevel >= 1 {
		return errors.Wrapf(ErrInvalidArgument, "confidence level %g is outside (0, 1)", o.ConfidenceLevel)
	}
	return nil
}

// PercentileValue is one requested percentile.
type PercentileValue struct {
	Percentile float64 `json:"percentile" codec:"percentile"`
	Value      float64 `json:"value" codec:"value"`
}

// Statistics is a read-only snapshot computed from a series.
type Statistics struct {
	Count             int               `json:"count" codec:"count"`
	Mean              float64           `json:"mean" codec:"mean"`
	Variance          float64           `json:"variance" codec:"variance"`
	StandardDeviation float64           `json:"standard_deviation" codec:"standard_deviation"`
	StandardError     float64           `json:"standard_error" codec:"standard_error"`
	Min               float64           `json:"min" codec:"min"`
	Max               float64           `json:"max" codec:"max"`
	Median            float64           `json:"median" codec:"median"`
	Percentiles       []PercentileValue `json:"percentiles,omitempty" codec:"percentiles,omitempty"`
	ConfidenceLevel   float64           `json:"confidence_level" codec:"confidence_level"`
	ConfidenceLower   float64           `json:"confidence_lower" codec:"confidence_lower"`
	ConfidenceUpper   float64           `json:"confidence_upper" codec:"confidence_upper"`
}

// Compute reduces the values of a series.
//
// The variance is the sample variance (n-1 denominator). With fewer than two samples the
// variance, standard error and interval width are zero rather than undefined.
func Compute(s Series, opts Options) (Statistics, error) {
	if err := opts.Validate(); err != nil {
		return Statistics{}, err
	}
	if s.Len() == 0 {
		return Statistics{}, errors.Wrap(ErrInvalidArgument, "no sample for statistics")
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Statistics{}, errors.Wrapf(ErrInvalidArgument, "sample %d is not finite", i)
		}
	}

	data := mstats.Float64Data(s.Values)
	n := data.Len()

	sum, err := mstats.Sum(data)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "sum")
	}
	minimum, err := mstats.Min(data)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "min")
	}
	maximum, err := mstats.Max(data)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "max")
	}

	result := Statistics{
		Count:           n,
		Mean:            sum / float64(n),
		Min:             minimum,
		Max:             maximum,
		ConfidenceLevel: opts.ConfidenceLevel,
	}

	if n >= 2 {
		variance, err := mstats.SampleVariance(data)
		if err != nil {
			return Statistics{}, errors.Wrap(err, "variance")
		}
		result.Variance = math.Max(variance, 0)
		result.StandardDeviation = math.Sqrt(result.Variance)
		result.StandardError = result.StandardDeviation / math.Sqrt(float64(n))
	}

	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)
	result.Median = interpolate(sorted, 50)
	for _, p := range opts.Percentiles {
		result.Percentiles = append(result.Percentiles, PercentileValue{Percentile: p, Value: interpolate(sorted, p)})
	}

	result.ConfidenceLower, result.ConfidenceUpper = result.Mean, result.Mean
	if n >= 2 && result.StandardError > 0 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-opts.ConfidenceLevel)/2)
		half := t * result.StandardError
		result.ConfidenceLower = result.Mean - half
		result.ConfidenceUpper = result.Mean + half
	}

	return result, nil
}

// Percentile returns the p-th percentile of values by linear interpolation between
// order statistics.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrap(ErrInvalidArgument, "no sample for percentile")
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, errors.Wrapf(ErrInvalidArgument, "percentile %g is outside [0, 100]", p)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return interpolate(sorted, p), nil
}

// interpolate expects a sorted, non-empty slice and p in [0, 100].
func interpolate(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	fraction := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*fraction
}
