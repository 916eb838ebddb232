package runner

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/filter"
	"github.com/shivanshkc/statbench/pkg/sampler"
	"github.com/shivanshkc/statbench/pkg/stats"
)

// ErrInvalidArgument marks configuration errors detected before any case runs.
var ErrInvalidArgument = errors.New("invalid argument")

// Config is the complete configuration of a run. Durations are in seconds, as on the
// command line.
type Config struct {
	Samples             int     `yaml:"samples"`
	MinSampleDuration   float64 `yaml:"min_sample_duration"`
	MinWarmupIterations int     `yaml:"min_warming_up_iterations"`
	MinWarmupDuration   float64 `yaml:"min_warming_up_duration_sec"`

	Percentiles     []float64 `yaml:"percentiles"`
	ConfidenceLevel float64   `yaml:"confidence_level"`
	// ClockResolution of zero means the resolution is probed at startup.
	ClockResolution time.Duration `yaml:"clock_resolution"`

	Include      []string `yaml:"include"`
	Exclude      []string `yaml:"exclude"`
	IncludeRegex []string `yaml:"include_regex"`
	ExcludeRegex []string `yaml:"exclude_regex"`

	JSON              string `yaml:"json"`
	Msgpack           string `yaml:"msgpack"`
	CompressedMsgpack string `yaml:"compressed_msgpack"`
	Plot              string `yaml:"plot"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	sc := sampler.DefaultConfig()
	return Config{
		Samples:             sc.Samples,
		MinSampleDuration:   sc.MinSampleDuration.Seconds(),
		MinWarmupIterations: sc.MinWarmupIterations,
		MinWarmupDuration:   sc.MinWarmupDuration.Seconds(),
		Percentiles:         append([]float64(nil), stats.DefaultPercentiles...),
		ConfidenceLevel:     stats.DefaultConfidenceLevel,
		LogLevel:            "warn",
	}
}

// Validate checks every option. Nothing is sampled when it fails.
func (c Config) Validate() error {
	switch {
	case c.Samples <= 0:
		return errors.Wrapf(ErrInvalidArgument, "samples must be positive, got %d", c.Samples)
	case !positive(c.MinSampleDuration):
		return errors.Wrapf(ErrInvalidArgument, "min_sample_duration must be a positive number of seconds, got %g", c.MinSampleDuration)
	case c.MinWarmupIterations < 0:
		return errors.Wrapf(ErrInvalidArgument, "min_warming_up_iterations must not be negative, got %d", c.MinWarmupIterations)
	case c.MinWarmupDuration < 0 || math.IsNaN(c.MinWarmupDuration) || math.IsInf(c.MinWarmupDuration, 0):
		return errors.Wrapf(ErrInvalidArgument, "min_warming_up_duration_sec must be a non-negative number of seconds, got %g", c.MinWarmupDuration)
	case c.ClockResolution < 0:
		return errors.Wrapf(ErrInvalidArgument, "clock_resolution must not be negative, got %s", c.ClockResolution)
	}

	if err := c.StatsOptions().Validate(); err != nil {
		return errors.Mark(err, ErrInvalidArgument)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SamplerConfig returns the sampler thresholds of the configuration.
func (c Config) SamplerConfig() sampler.Config {
	cfg := sampler.DefaultConfig()
	cfg.Samples = c.Samples
	cfg.MinSampleDuration = seconds(c.MinSampleDuration)
	cfg.MinWarmupIterations = c.MinWarmupIterations
	cfg.MinWarmupDuration = seconds(c.MinWarmupDuration)
	return cfg
}

// StatsOptions returns the statistics options of the configuration.
func (c Config) StatsOptions() stats.Options {
	return stats.Options{Percentiles: c.Percentiles, ConfidenceLevel: c.ConfidenceLevel}
}

// FilterSpec returns the case filter of the configuration.
func (c Config) FilterSpec() filter.Spec {
	return filter.Spec{
		IncludeGlobs:   c.Include,
		ExcludeGlobs:   c.Exclude,
		IncludeRegexes: c.IncludeRegex,
		ExcludeRegexes: c.ExcludeRegex,
	}
}

// ParseLogLevel parses debug, info, warn or error. The empty string means warn.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown log level %q", level)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// seconds converts to a Duration. A positive value never becomes zero.
func seconds(s float64) time.Duration {
	d := time.Duration(math.Round(s * float64(time.Second)))
	if d == 0 && s > 0 {
		return time.Nanosecond
	}
	return d
}
