// Package sampler runs one benchmark case: warm-up, iteration estimation and sampling.
//
// Each case goes through Idle -> WarmingUp -> Sampling -> Done, or ends in Failed as soon
// as the operation (or one of its hooks) returns an error or panics. A failed case keeps
// none of its partial data; the caller moves on to the next case.
//
// The per-sample iteration count is estimated once from the last warm-up batch. A sample
// that still falls short of the minimum sample duration is accepted as is: re-running
// short samples would bias the reported distribution towards slow runs.
//
// The harness applies no timeout. An operation that never returns hangs the run.
package sampler

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/clock"
	"github.com/shivanshkc/statbench/pkg/stats"
)

var (
	// ErrCaseFailed marks errors of cases whose operation or hooks failed.
	ErrCaseFailed = errors.New("benchmark case failed")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid sampler configuration")
)

// DefaultMaxIterations caps warm-up batches and estimated iteration counts.
const DefaultMaxIterations = 1 << 30

// Config holds the sampling thresholds.
type Config struct {
	// Samples is the number of reported samples per case.
	Samples int
	// MinSampleDuration is the duration each sample is expected to exceed.
	MinSampleDuration time.Duration
	// MinWarmupIterations and MinWarmupDuration must both be reached before sampling.
	MinWarmupIterations int
	MinWarmupDuration   time.Duration
	// MaxIterations caps the iteration count of any batch.
	MaxIterations int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		Samples:             30,
		MinSampleDuration:   30 * time.Millisecond,
		MinWarmupIterations: 1,
		MinWarmupDuration:   30 * time.Millisecond,
		MaxIterations:       DefaultMaxIterations,
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	switch {
	case c.Samples <= 0:
		return errors.Wrapf(ErrInvalidConfig, "samples must be positive, got %d", c.Samples)
	case c.MinSampleDuration <= 0:
		return errors.Wrapf(ErrInvalidConfig, "minimum sample duration must be positive, got %s", c.MinSampleDuration)
	case c.MinWarmupIterations < 0:
		return errors.Wrapf(ErrInvalidConfig, "minimum warm-up iterations must not be negative, got %d", c.MinWarmupIterations)
	case c.MinWarmupDuration < 0:
		return errors.Wrapf(ErrInvalidConfig, "minimum warm-up duration must not be negative, got %s", c.MinWarmupDuration)
	case c.MaxIterations <= 0:
		return errors.Wrapf(ErrInvalidConfig, "maximum iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// Warmup summarizes the warm-up phase of a case.
type Warmup struct {
	Batches    int
	Iterations int
	Duration   time.Duration
	// LastIterations and LastDuration describe the batch that seeded the estimate.
	LastIterations int
	LastDuration   time.Duration
}

// ChannelSeries holds the per-sample aggregates of one custom channel.
type ChannelSeries struct {
	Spec   bench.ChannelSpec
	Series stats.Series
}

// Measurement is the outcome of running one case.
type Measurement struct {
	Case *bench.Case
	// State is Done or Failed.
	State State
	// States lists every state the case went through, in order.
	States []State
	// Err is set iff State is Failed. It is marked with ErrCaseFailed.
	Err error

	Warmup     Warmup
	Iterations int
	Samples    int
	// Durations holds the duration of each sample in seconds.
	Durations stats.Series
	// Channels holds the custom channels in declaration order.
	Channels []ChannelSeries
	// Outputs are the custom outputs without statistics.
	Outputs []bench.Output
}

// Sampler runs cases one at a time.
type Sampler struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger
}

// New returns a Sampler. A nil logger discards logs.
func New(cfg Config, clk clock.Clock, logger *slog.Logger) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "clock is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{cfg: cfg, clock: clk, logger: logger}, nil
}

// Run measures one case. It never panics on behalf of user code; failures are reported
// through the returned Measurement.
func (s *Sampler) Run(c *bench.Case) Measurement {
	m := Measurement{Case: c, State: Idle, States: []State{Idle}}
	ctx := bench.NewContext(c)

	s.transition(&m, WarmingUp)
	if c.Setup != nil {
		if err := s.callHook(ctx, c.Setup); err != nil {
			return s.fail(&m, errors.Wrap(err, "setup"))
		}
	}

	if err := s.measure(ctx, &m); err != nil {
		if tdErr := s.teardown(ctx); tdErr != nil {
			err = errors.CombineErrors(err, tdErr)
		}
		return s.fail(&m, err)
	}

	if err := s.teardown(ctx); err != nil {
		return s.fail(&m, err)
	}

	m.Outputs = ctx.Outputs()
	s.transition(&m, Done)
	return m
}

// measure runs warm-up and sampling, filling m.
func (s *Sampler) measure(ctx *bench.Context, m *Measurement) error {
	c := m.Case

	warmup, err := s.warmUp(ctx, c.Op)
	m.Warmup = warmup
	if err != nil {
		return errors.Wrap(err, "warm-up")
	}

	iterations := c.Iterations
	if iterations <= 0 {
		iterations = EstimateIterations(s.cfg.MinSampleDuration, warmup.LastDuration, warmup.LastIterations, s.cfg.MaxIterations)
	}
	samples := c.Samples
	if samples <= 0 {
		samples = s.cfg.Samples
	}

	s.transition(m, Sampling)
	s.logger.Debug("sampling plan", "case", c.FullName(), "params", c.Params.ID(),
		"iterations", iterations, "samples", samples, "warmup_batches", warmup.Batches)

	channels := ctx.Channels()
	durations := make([]float64, samples)
	values := make([][]float64, len(channels))
	for j := range values {
		values[j] = make([]float64, samples)
	}

	// Warm-up contributions must not leak into the first sample.
	ctx.ResetChannels()
	for i := 0; i < samples; i++ {
		elapsed, err := s.runBatch(ctx, c.Op, iterations)
		if err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
		durations[i] = elapsed.Seconds()
		for j, ch := range channels {
			values[j][i] = ch.Drain()
		}
	}

	m.Iterations = iterations
	m.Samples = samples
	m.Durations = stats.NewSeries(durations, iterations)
	for j, ch := range channels {
		m.Channels = append(m.Channels, ChannelSeries{Spec: ch.Spec(), Series: stats.NewSeries(values[j], iterations)})
	}
	return nil
}

// warmUp runs batches of doubling size until both warm-up thresholds are reached.
func (s *Sampler) warmUp(ctx *bench.Context, op bench.Operation) (Warmup, error) {
	var w Warmup
	n := 1
	for {
		elapsed, err := s.runBatch(ctx, op, n)
		if err != nil {
			return w, err
		}

		w.Batches++
		w.Iterations += n
		w.Duration += elapsed
		w.LastIterations = n
		w.LastDuration = elapsed
		if w.Iterations >= s.cfg.MinWarmupIterations && w.Duration >= s.cfg.MinWarmupDuration {
			return w, nil
		}

		n = min(n*2, s.cfg.MaxIterations)
	}
}

// runBatch invokes op n times inside the timed region. The region holds nothing but the
// counted loop and one error check per iteration. Durations are floored at the clock
// resolution, which also guarantees that warm-up terminates.
func (s *Sampler) runBatch(ctx *bench.Context, op bench.Operation, n int) (elapsed time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			elapsed, err = 0, panicError(r)
		}
	}()

	ctx.SetIterations(n)
	start := s.clock.Now()
	for i := 0; i < n; i++ {
		if err = op(ctx); err != nil {
			return 0, err
		}
	}
	elapsed = s.clock.Now() - start

	if resolution := s.clock.Resolution(); elapsed < resolution {
		elapsed = resolution
	}
	return elapsed, nil
}

// callHook runs a setup or teardown hook, converting panics to errors.
func (s *Sampler) callHook(ctx *bench.Context, hook bench.Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return hook(ctx)
}

func (s *Sampler) teardown(ctx *bench.Context) error {
	if ctx.Case().Teardown == nil {
		return nil
	}
	if err := s.callHook(ctx, ctx.Case().Teardown); err != nil {
		return errors.Wrap(err, "teardown")
	}
	return nil
}

func (s *Sampler) transition(m *Measurement, to State) {
	s.logger.Debug("sampler transition", "case", m.Case.FullName(), "params", m.Case.Params.ID(),
		"from", m.State.String(), "to", to.String())
	m.State = to
	m.States = append(m.States, to)
}

// fail discards partial data and moves the case to Failed.
func (s *Sampler) fail(m *Measurement, cause error) Measurement {
	phase := m.State
	failed := Measurement{
		Case:   m.Case,
		State:  m.State,
		States: m.States,
		Warmup: m.Warmup,
		Err:    errors.Mark(errors.Wrapf(cause, "%s failed while %s", m.Case.FullName(), phase), ErrCaseFailed),
	}
	s.transition(&failed, Failed)
	return failed
}

// EstimateIterations returns the smallest iteration count whose expected duration
// exceeds minSample, given that lastIterations took lastDuration. The result is clamped
// to [1, maxIterations].
func EstimateIterations(minSample, lastDuration time.Duration, lastIterations, maxIterations int) int {
	if lastIterations <= 0 || lastDuration <= 0 {
		return 1
	}

	perIteration := float64(lastDuration) / float64(lastIterations)
	estimate := math.Floor(float64(minSample)/perIteration) + 1
	switch {
	case estimate < 1:
		return 1
	case estimate > float64(maxIterations):
		return maxIterations
	}
	return int(estimate)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "operation panicked")
	}
	return errors.Newf("operation panicked: %v", r)
}
