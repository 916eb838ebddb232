// Package result holds the versioned result document of a run and its serializations.
//
// The same struct tags drive JSON and msgpack, so both formats carry identical keys.
// Collections are omitted when empty; a decoded document is therefore equal to the
// document that was encoded, field for field.
package result

import (
	"slices"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/names"
	"github.com/shivanshkc/statbench/pkg/stats"
)

// SchemaVersion is the version written into every document.
const SchemaVersion = 3

// Case statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Channel analyses and units of the built-in channels.
const (
	AnalysisPerIteration = "per_iteration"
	AnalysisThroughput   = "throughput"

	UnitSeconds   = "s"
	UnitPerSecond = "1/s"
)

// Document is the result of one run.
type Document struct {
	Version    int     `json:"version" codec:"version"`
	StartedAt  string  `json:"started_at,omitempty" codec:"started_at,omitempty"`
	FinishedAt string  `json:"finished_at,omitempty" codec:"finished_at,omitempty"`
	Groups     []Group `json:"groups,omitempty" codec:"groups,omitempty"`
}

// Group collects the cases of one group in registration order.
type Group struct {
	Name        string        `json:"name" codec:"name"`
	EscapedName names.Escaped `json:"escaped_name" codec:"escaped_name"`
	Cases       []Case        `json:"cases,omitempty" codec:"cases,omitempty"`
}

// Param is one named parameter value, rendered as text.
type Param struct {
	Name  string `json:"name" codec:"name"`
	Value string `json:"value" codec:"value"`
}

// Output is a custom output without statistics.
type Output struct {
	Name  string  `json:"name" codec:"name"`
	Value float64 `json:"value" codec:"value"`
}

// Case is the outcome of one benchmark case.
type Case struct {
	Name            string             `json:"name" codec:"name"`
	EscapedName     names.Escaped      `json:"escaped_name" codec:"escaped_name"`
	Params          []Param            `json:"params,omitempty" codec:"params,omitempty"`
	ParamsID        string             `json:"params_id,omitempty" codec:"params_id,omitempty"`
	EscapedParamsID names.Escaped      `json:"escaped_params_id,omitempty" codec:"escaped_params_id,omitempty"`
	Status          string             `json:"status" codec:"status"`
	Error           string             `json:"error,omitempty" codec:"error,omitempty"`
	Iterations      int                `json:"iterations,omitempty" codec:"iterations,omitempty"`
	Samples         int                `json:"samples,omitempty" codec:"samples,omitempty"`
	Channels        map[string]Channel `json:"channels,omitempty" codec:"channels,omitempty"`
	CustomOutputs   []Output           `json:"custom_outputs,omitempty" codec:"custom_outputs,omitempty"`
}

// Succeeded reports whether the case produced measurements.
func (c Case) Succeeded() bool {
	return c.Status == StatusSucceeded
}

// Channel is the series and statistics of one measurement channel of a case.
type Channel struct {
	EscapedName names.Escaped    `json:"escaped_name" codec:"escaped_name"`
	Unit        string           `json:"unit,omitempty" codec:"unit,omitempty"`
	Analysis    string           `json:"analysis" codec:"analysis"`
	Values      []float64        `json:"values,omitempty" codec:"values,omitempty"`
	Stat        stats.Statistics `json:"stat" codec:"stat"`
}

// ChannelNames returns the channel names of c with the built-in channels first and the
// custom channels sorted by name.
func (c Case) ChannelNames() []string {
	var out []string
	for _, builtin := range []string{bench.ChannelTime, bench.ChannelThroughput} {
		if _, ok := c.Channels[builtin]; ok {
			out = append(out, builtin)
		}
	}

	var custom []string
	for name := range c.Channels {
		if name != bench.ChannelTime && name != bench.ChannelThroughput {
			custom = append(custom, name)
		}
	}
	slices.Sort(custom)
	return append(out, custom...)
}

// Counts returns the number of succeeded and failed cases in the document.
func (d *Document) Counts() (succeeded, failed int) {
	for _, g := range d.Groups {
		for _, c := range g.Cases {
			if c.Succeeded() {
				succeeded++
			} else {
				failed++
			}
		}
	}
	return succeeded, failed
}
