package result

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/names"
	"github.com/shivanshkc/statbench/pkg/sampler"
	"github.com/shivanshkc/statbench/pkg/stats"
)

// Builder assembles a Document from measurements.
//
// Groups appear in the order their first case is added, cases in the order they are added.
// Empty collections stay nil.
type Builder struct {
	opts   stats.Options
	doc    Document
	groups map[string]int
}

// NewBuilder returns a Builder that reduces series with the given options.
func NewBuilder(opts stats.Options) *Builder {
	return &Builder{
		opts:   opts,
		doc:    Document{Version: SchemaVersion},
		groups: map[string]int{},
	}
}

// Start records the start time of the run.
func (b *Builder) Start(t time.Time) {
	b.doc.StartedAt = formatTime(t)
}

// Finish records the end time of the run.
func (b *Builder) Finish(t time.Time) {
	b.doc.FinishedAt = formatTime(t)
}

// Add appends the outcome of one case. A measurement whose statistics cannot be computed
// is recorded as failed.
func (b *Builder) Add(m sampler.Measurement) {
	c := m.Case
	id := c.Identity()

	rc := Case{Name: c.Name, EscapedName: id.Case, ParamsID: c.Params.ID()}
	if rc.ParamsID != "" {
		rc.EscapedParamsID = id.Params
	}
	for _, p := range c.Params {
		rc.Params = append(rc.Params, Param{Name: p.Name, Value: p.String()})
	}

	if m.State == sampler.Done {
		channels, err := b.channels(m)
		if err == nil {
			rc.Status = StatusSucceeded
			rc.Iterations = m.Iterations
			rc.Samples = m.Samples
			rc.Channels = channels
			for _, o := range m.Outputs {
				rc.CustomOutputs = append(rc.CustomOutputs, Output{Name: o.Name, Value: o.Value})
			}
		} else {
			m.Err = errors.Wrapf(err, "statistics of %s", c.FullName())
		}
	}
	if rc.Status == "" {
		rc.Status = StatusFailed
		rc.Error = "unknown error"
		if m.Err != nil {
			rc.Error = m.Err.Error()
		}
	}

	idx, ok := b.groups[c.Group]
	if !ok {
		idx = len(b.doc.Groups)
		b.groups[c.Group] = idx
		b.doc.Groups = append(b.doc.Groups, Group{Name: c.Group, EscapedName: id.Group})
	}
	b.doc.Groups[idx].Cases = append(b.doc.Groups[idx].Cases, rc)
}

// Document returns the assembled document. The builder must not be used afterwards.
func (b *Builder) Document() *Document {
	return &b.doc
}

// channels reduces the built-in and custom channels of a successful measurement.
func (b *Builder) channels(m sampler.Measurement) (map[string]Channel, error) {
	perIteration, err := stats.PerIteration(m.Durations)
	if err != nil {
		return nil, err
	}
	throughput, err := stats.Throughput(perIteration)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Channel, 2+len(m.Channels))
	if out[bench.ChannelTime], err = b.channel(bench.ChannelTime, UnitSeconds, AnalysisPerIteration, m.Durations, perIteration); err != nil {
		return nil, err
	}
	if out[bench.ChannelThroughput], err = b.channel(bench.ChannelThroughput, UnitPerSecond, AnalysisThroughput, throughput, throughput); err != nil {
		return nil, err
	}

	for _, cs := range m.Channels {
		var analyzed stats.Series
		switch cs.Spec.Analysis {
		case bench.AnalysisRatePerSecond:
			analyzed, err = stats.RatePerSecond(cs.Series, m.Durations)
		default:
			analyzed, err = stats.PerIteration(cs.Series)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "channel %q", cs.Spec.Name)
		}

		if out[cs.Spec.Name], err = b.channel(cs.Spec.Name, "", cs.Spec.Analysis.String(), cs.Series, analyzed); err != nil {
			return nil, errors.Wrapf(err, "channel %q", cs.Spec.Name)
		}
	}
	return out, nil
}

// channel stores the raw values and the statistics of the analyzed series.
func (b *Builder) channel(name, unit, analysis string, raw, analyzed stats.Series) (Channel, error) {
	stat, err := stats.Compute(analyzed, b.opts)
	if err != nil {
		return Channel{}, err
	}
	return Channel{
		EscapedName: names.Escape(name),
		Unit:        unit,
		Analysis:    analysis,
		Values:      append([]float64(nil), raw.Values...),
		Stat:        stat,
	}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
