// Package bench defines benchmark cases and the registry that holds them.
//
// A case is registered once at process start, before any filtering or execution, and is
// immutable afterwards. The registry is sealed when a run begins; from then on it is
// read-only and safe for concurrent reads.
//
//	registry := bench.NewRegistry()
//	registry.MustRegister(bench.Case{
//		Group: "Strings",
//		Name:  "Concat",
//		Op: func(ctx *bench.Context) error {
//			_ = strings.Repeat("x", 64)
//			return nil
//		},
//	})
package bench

import (
	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/names"
)

// Reserved names of the built-in channels.
const (
	ChannelTime       = "time"
	ChannelThroughput = "throughput"
)

// Operation is one iteration of the measured work.
//
// Returning an error marks the case as failed. A panic is treated the same way.
type Operation func(ctx *Context) error

// Hook runs outside the timed region, before warm-up (setup) or after the last sample (teardown).
type Hook func(ctx *Context) error

// Analysis selects how a custom channel's per-sample aggregates are reduced.
type Analysis int

const (
	// AnalysisMean divides each sample's aggregate by the sample's iteration count.
	AnalysisMean Analysis = iota
	// AnalysisRatePerSecond divides each sample's aggregate by the sample's duration.
	AnalysisRatePerSecond
)

// String returns the name used in result documents.
func (a Analysis) String() string {
	switch a {
	case AnalysisMean:
		return "mean"
	case AnalysisRatePerSecond:
		return "rate_per_second"
	default:
		return "unknown"
	}
}

// ChannelSpec declares a custom measurement channel.
type ChannelSpec struct {
	Name     string
	Analysis Analysis
}

// Case is one benchmarked unit of work.
type Case struct {
	// Group and Name identify the case together with the parameter-set id.
	Group string
	Name  string
	// Params are the named parameter values of this case, in declaration order.
	Params Params

	// Op is the measured operation. Required.
	Op Operation
	// Setup and Teardown are optional fixtures.
	Setup    Hook
	Teardown Hook

	// Channels declares custom measurement channels the operation reports into.
	Channels []ChannelSpec

	// Samples overrides the configured number of samples when positive.
	Samples int
	// Iterations pins the per-sample iteration count when positive, disabling estimation.
	Iterations int
}

// FullName returns "<group>/<case>", the string that filters match against.
func (c *Case) FullName() string {
	return c.Group + "/" + c.Name
}

// Identity returns the escaped identity of the case.
func (c *Case) Identity() Identity {
	return Identity{
		Group:  names.Escape(c.Group),
		Case:   names.Escape(c.Name),
		Params: names.Escape(c.Params.ID()),
	}
}

// Identity is the normalized identity of a case. Each component is escaped exactly once.
type Identity struct {
	Group  names.Escaped
	Case   names.Escaped
	Params names.Escaped
}

// Key returns the identity as a single string. Escaping removes '/' from every
// component, so distinct identities never collide.
func (id Identity) Key() string {
	return string(id.Group) + "/" + string(id.Case) + "/" + string(id.Params)
}

// validate checks the structural requirements of a case before registration.
func (c *Case) validate() error {
	if c.Group == "" {
		return errors.Wrap(ErrInvalidCase, "group name is required")
	}
	if c.Name == "" {
		return errors.Wrapf(ErrInvalidCase, "case name is required in group %q", c.Group)
	}
	if c.Op == nil {
		return errors.Wrapf(ErrInvalidCase, "case %s has no operation", c.FullName())
	}
	if c.Samples < 0 || c.Iterations < 0 {
		return errors.Wrapf(ErrInvalidCase, "case %s has negative samples or iterations", c.FullName())
	}
	if err := c.Params.validate(); err != nil {
		return errors.Wrapf(err, "case %s", c.FullName())
	}

	seen := map[string]struct{}{}
	for _, ch := range c.Channels {
		switch ch.Name {
		case "":
			return errors.Wrapf(ErrInvalidCase, "case %s declares a channel without a name", c.FullName())
		case ChannelTime, ChannelThroughput:
			return errors.Wrapf(ErrInvalidCase, "case %s uses reserved channel name %q", c.FullName(), ch.Name)
		}
		if ch.Analysis != AnalysisMean && ch.Analysis != AnalysisRatePerSecond {
			return errors.Wrapf(ErrInvalidCase, "case %s channel %q has unknown analysis", c.FullName(), ch.Name)
		}
		if _, ok := seen[ch.Name]; ok {
			return errors.Wrapf(ErrInvalidCase, "case %s declares channel %q twice", c.FullName(), ch.Name)
		}
		seen[ch.Name] = struct{}{}
	}
	return nil
}

// clone returns a copy whose slices do not alias c.
func (c *Case) clone() *Case {
	out := *c
	out.Params = c.Params.clone()
	if len(c.Channels) > 0 {
		out.Channels = append([]ChannelSpec(nil), c.Channels...)
	}
	return &out
}
