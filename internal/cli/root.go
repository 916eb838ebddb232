// Package cli contains the command-line interface of benchmark binaries, powered by the
// cobra library. It defines the root command, its flags, the optional YAML configuration
// file and the mapping of run outcomes to exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/runner"
)

// Exit codes of a benchmark binary.
const (
	// ExitOK means every selected case succeeded, including when none was selected.
	ExitOK = 0
	// ExitFailure means a case failed or the run was interrupted.
	ExitFailure = 1
	// ExitUsage means the command line, the configuration or the registration was invalid.
	ExitUsage = 2
	// ExitReportError means every case succeeded but a reporter failed.
	ExitReportError = 3
)

// errUsage marks errors that are the caller's fault.
var errUsage = errors.New("usage error")

// Execute is the primary entry point of a benchmark binary.
//
// It sets up a root context that is cancelled on SIGINT or SIGTERM. Cancellation stops the
// run before the next case; the case in progress completes.
func Execute(reg *bench.Registry, args []string) int {
	// Create a root context that can be canceled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	// Launch a goroutine to cancel the context upon receiving a signal.
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return Run(ctx, reg, args, os.Stdout, os.Stderr)
}

// Run executes the root command with explicit streams and returns the exit code.
func Run(ctx context.Context, reg *bench.Registry, args []string, stdout, stderr io.Writer) int {
	exitCode := ExitOK
	cmd := newRootCmd(reg, stdout, stderr, &exitCode)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, text.FgRed.Sprint("Error: "+err.Error()))
		if isUsageError(err) {
			_, _ = fmt.Fprint(stderr, cmd.UsageString())
			return ExitUsage
		}
		return ExitFailure
	}
	return exitCode
}

// newRootCmd builds the root command. The outcome of a run is stored in exitCode.
func newRootCmd(reg *bench.Registry, stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	flagCfg := runner.DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   commandName(),
		Short: "Run the registered benchmarks.",
		Long: `Run the registered benchmarks and report their statistics.

Every selected case is warmed up, then sampled repeatedly. Statistics are printed as one
table per group and can also be written as JSON, msgpack or compressed msgpack documents
and as per-channel plot data files.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Mark(errors.Newf("unexpected arguments: %q", args), errUsage)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reg.Err(); err != nil {
				return errors.Mark(errors.Wrap(err, "invalid benchmark registration"), errUsage)
			}

			cfg, err := resolveConfig(cmd, configPath, flagCfg)
			if err != nil {
				return err
			}
			if message := validateConfig(cfg); message != "" {
				return errors.Mark(errors.New(message), errUsage)
			}

			level, err := runner.ParseLogLevel(cfg.LogLevel)
			if err != nil {
				return errors.Mark(err, errUsage)
			}
			logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			summary, err := runner.New(reg, cfg, runner.WithLogger(logger), runner.WithOutput(stdout)).
				Run(cmd.Context())
			if err != nil {
				return err
			}

			*exitCode = exitCodeOf(summary)
			for _, reportErr := range summary.ReportErrors {
				_, _ = fmt.Fprintln(stderr, text.FgRed.Sprint("Error: "+reportErr.Error()))
			}
			if summary.Interrupted {
				_, _ = fmt.Fprintln(stderr, text.FgYellow.Sprint("Interrupted."))
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})
	bindFlags(cmd, &flagCfg, &configPath)
	return cmd
}

// bindFlags registers every flag of the root command into cfg.
func bindFlags(cmd *cobra.Command, cfg *runner.Config, configPath *string) {
	flags := cmd.Flags()
	flags.SortFlags = false

	flags.StringArrayVar(&cfg.Include, "include", nil,
		"Include cases whose <group>/<case> name matches this glob. Repeatable.")
	flags.StringArrayVar(&cfg.Exclude, "exclude", nil,
		"Exclude cases whose <group>/<case> name matches this glob. Repeatable.")
	flags.StringArrayVar(&cfg.IncludeRegex, "include_regex", nil,
		"Include cases whose <group>/<case> name fully matches this regular expression. Repeatable.")
	flags.StringArrayVar(&cfg.ExcludeRegex, "exclude_regex", nil,
		"Exclude cases whose <group>/<case> name fully matches this regular expression. Repeatable.")

	flags.IntVar(&cfg.Samples, "samples", cfg.Samples, "Number of samples per case.")
	flags.Float64Var(&cfg.MinSampleDuration, "min_sample_duration", cfg.MinSampleDuration,
		"Minimum duration of one sample in seconds.")
	flags.IntVar(&cfg.MinWarmupIterations, "min_warming_up_iterations", cfg.MinWarmupIterations,
		"Minimum number of warm-up iterations.")
	flags.Float64Var(&cfg.MinWarmupDuration, "min_warming_up_duration_sec", cfg.MinWarmupDuration,
		"Minimum warm-up duration in seconds.")

	flags.Float64SliceVar(&cfg.Percentiles, "percentiles", cfg.Percentiles, "Percentiles to report.")
	flags.Float64Var(&cfg.ConfidenceLevel, "confidence_level", cfg.ConfidenceLevel,
		"Confidence level of the mean's interval.")
	flags.DurationVar(&cfg.ClockResolution, "clock_resolution", cfg.ClockResolution,
		"Clock resolution. Zero probes it at startup.")

	flags.StringVar(&cfg.JSON, "json", "", "Write the result document as JSON to this file.")
	flags.StringVar(&cfg.Msgpack, "msgpack", "", "Write the result document as msgpack to this file.")
	flags.StringVar(&cfg.CompressedMsgpack, "compressed-msgpack", "",
		"Write the result document as gzip-compressed msgpack to this file.")
	flags.StringVar(&cfg.Plot, "plot", "", "Write per-channel plot data files under this directory.")

	flags.StringVar(configPath, "config", "", "Read options from this YAML file. Flags take precedence.")
	flags.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "Log level: debug, info, warn or error.")
}

// exitCodeOf maps the outcome of a run to an exit code.
func exitCodeOf(summary runner.Summary) int {
	switch {
	case summary.Failed > 0 || summary.Interrupted:
		return ExitFailure
	case len(summary.ReportErrors) > 0:
		return ExitReportError
	default:
		return ExitOK
	}
}

func isUsageError(err error) bool {
	return errors.Is(err, errUsage) || errors.Is(err, runner.ErrInvalidArgument)
}

func commandName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "statbench"
}
