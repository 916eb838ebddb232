// Package runner orchestrates a benchmark run: validation, selection, sequential
// sampling, document assembly and reporting.
package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/clock"
	"github.com/shivanshkc/statbench/pkg/filter"
	"github.com/shivanshkc/statbench/pkg/reporter"
	"github.com/shivanshkc/statbench/pkg/result"
	"github.com/shivanshkc/statbench/pkg/sampler"
	"github.com/shivanshkc/statbench/pkg/utils/miscutils"
)

// Summary is the outcome of a run.
type Summary struct {
	Document *result.Document
	// Selected is the number of cases that survived the filter.
	Selected int
	// Succeeded and Failed count the cases in the document.
	Succeeded int
	Failed    int
	// Interrupted is set when the context was cancelled before every selected case ran.
	Interrupted bool
	// ReportErrors holds one error per failed reporter.
	ReportErrors []error
}

// Runner runs the cases of a registry.
type Runner struct {
	registry *bench.Registry
	cfg      Config

	clock     clock.Clock
	logger    *slog.Logger
	output    io.Writer
	reporters []reporter.Reporter
	now       func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock replaces the monotonic clock.
func WithClock(clk clock.Clock) Option {
	return func(r *Runner) { r.clock = clk }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithOutput sets the writer of the console reporter. It defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.output = w }
}

// WithReporters adds reporters that run after the configured ones.
func WithReporters(reporters ...reporter.Reporter) Option {
	return func(r *Runner) { r.reporters = append(r.reporters, reporters...) }
}

// New returns a Runner for the cases of registry.
func New(registry *bench.Registry, cfg Config, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		output:   os.Stdout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the selected cases one after another.
//
// The returned error is only set for problems detected before any case runs: invalid
// configuration and malformed filters, both marked with ErrInvalidArgument. Case and
// reporter failures are reported through the Summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.cfg.Validate(); err != nil {
		return Summary{}, err
	}
	f, err := filter.Build(r.cfg.FilterSpec())
	if err != nil {
		return Summary{}, errors.Mark(err, ErrInvalidArgument)
	}

	clk := r.clock
	if clk == nil {
		clk = clock.NewMonotonic(r.cfg.ClockResolution)
	}
	s, err := sampler.New(r.cfg.SamplerConfig(), clk, r.logger)
	if err != nil {
		return Summary{}, errors.Mark(err, ErrInvalidArgument)
	}

	r.registry.Seal()
	selected := filter.Select(r.registry.Cases(), f)
	r.logger.Info("cases selected", "selected", len(selected), "registered", r.registry.Len(),
		"clock_resolution", miscutils.FormatDuration(clk.Resolution()))

	summary := Summary{Selected: len(selected)}
	builder := result.NewBuilder(r.cfg.StatsOptions())
	builder.Start(r.now())

	for i, c := range selected {
		if ctx.Err() != nil {
			summary.Interrupted = true
			r.logger.Warn("run interrupted", "completed", i, "selected", len(selected))
			break
		}

		r.logger.Info("running case", "case", c.FullName(), "params", c.Params.ID(),
			"index", i+1, "selected", len(selected))
		start := r.now()
		m := s.Run(c)
		if m.State == sampler.Failed {
			r.logger.Error("case failed", "case", c.FullName(), "params", c.Params.ID(), "error", m.Err)
		} else {
			r.logger.Info("case finished", "case", c.FullName(), "params", c.Params.ID(),
				"iterations", m.Iterations, "samples", m.Samples,
				"elapsed", miscutils.FormatDuration(r.now().Sub(start)))
		}
		builder.Add(m)
	}

	builder.Finish(r.now())
	summary.Document = builder.Document()
	summary.Succeeded, summary.Failed = summary.Document.Counts()

	for _, rep := range r.allReporters() {
		if err := rep.Report(summary.Document); err != nil {
			r.logger.Error("reporter failed", "reporter", rep.Name(), "error", err)
			summary.ReportErrors = append(summary.ReportErrors, errors.Wrapf(err, "reporter %s", rep.Name()))
		}
	}
	return summary, nil
}

// allReporters returns the console reporter, the configured output reporters and the
// extra reporters, in that order.
func (r *Runner) allReporters() []reporter.Reporter {
	reporters := []reporter.Reporter{reporter.NewConsole(r.output)}
	if r.cfg.JSON != "" {
		reporters = append(reporters, reporter.NewDataFile(r.cfg.JSON, result.FormatJSON))
	}
	if r.cfg.Msgpack != "" {
		reporters = append(reporters, reporter.NewDataFile(r.cfg.Msgpack, result.FormatMsgpack))
	}
	if r.cfg.CompressedMsgpack != "" {
		reporters = append(reporters, reporter.NewDataFile(r.cfg.CompressedMsgpack, result.FormatCompressedMsgpack))
	}
	if r.cfg.Plot != "" {
		reporters = append(reporters, reporter.NewPlotData(r.cfg.Plot))
	}
	return append(reporters, r.reporters...)
}
