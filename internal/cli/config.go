package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shivanshkc/statbench/pkg/runner"
)

// flagSetters copies the value of one flag from the flag-bound config into the resolved
// config. Only flags set on the command line are copied.
var flagSetters = map[string]func(dst *runner.Config, src runner.Config){
	"include":       func(dst *runner.Config, src runner.Config) { dst.Include = src.Include },
	"exclude":       func(dst *runner.Config, src runner.Config) { dst.Exclude = src.Exclude },
	"include_regex": func(dst *runner.Config, src runner.Config) { dst.IncludeRegex = src.IncludeRegex },
	"exclude_regex": func(dst *runner.Config, src runner.Config) { dst.ExcludeRegex = src.ExcludeRegex },

	"samples":             func(dst *runner.Config, src runner.Config) { dst.Samples = src.Samples },
	"min_sample_duration": func(dst *runner.Config, src runner.Config) { dst.MinSampleDuration = src.MinSampleDuration },
	"min_warming_up_iterations": func(dst *runner.Config, src runner.Config) {
		dst.MinWarmupIterations = src.MinWarmupIterations
	},
	"min_warming_up_duration_sec": func(dst *runner.Config, src runner.Config) {
		dst.MinWarmupDuration = src.MinWarmupDuration
	},

	"percentiles":      func(dst *runner.Config, src runner.Config) { dst.Percentiles = src.Percentiles },
	"confidence_level": func(dst *runner.Config, src runner.Config) { dst.ConfidenceLevel = src.ConfidenceLevel },
	"clock_resolution": func(dst *runner.Config, src runner.Config) { dst.ClockResolution = src.ClockResolution },

	"json":               func(dst *runner.Config, src runner.Config) { dst.JSON = src.JSON },
	"msgpack":            func(dst *runner.Config, src runner.Config) { dst.Msgpack = src.Msgpack },
	"compressed-msgpack": func(dst *runner.Config, src runner.Config) { dst.CompressedMsgpack = src.CompressedMsgpack },
	"plot":               func(dst *runner.Config, src runner.Config) { dst.Plot = src.Plot },

	"log_level": func(dst *runner.Config, src runner.Config) { dst.LogLevel = src.LogLevel },
}

// resolveConfig layers the defaults, the config file at path (if any) and the flags that
// were explicitly set, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command, path string, flagCfg runner.Config) (runner.Config, error) {
	cfg := runner.DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return runner.Config{}, err
		}
	}

	for name, set := range flagSetters {
		if cmd.Flags().Changed(name) {
			set(&cfg, flagCfg)
		}
	}
	return cfg, nil
}

// loadConfigFile decodes the YAML file at path over cfg. Keys absent from the file keep
// their current values; unknown keys are rejected.
func loadConfigFile(path string, cfg *runner.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "read config file %s", path), errUsage)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Mark(errors.Wrapf(err, "parse config file %s", path), errUsage)
	}
	return nil
}
