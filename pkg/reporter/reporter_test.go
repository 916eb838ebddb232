package reporter_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/reporter"
	"github.com/shivanshkc/statbench/pkg/result"
	"github.com/shivanshkc/statbench/pkg/sampler"
	"github.com/shivanshkc/statbench/pkg/stats"
)

func testDocument() *result.Document {
	b := result.NewBuilder(stats.DefaultOptions())
	b.Add(sampler.Measurement{
		Case: &bench.Case{
			Group:    "Containers",
			Name:     "Map Insert",
			Params:   bench.Params{{Name: "size", Value: 1024}},
			Channels: []bench.ChannelSpec{{Name: "allocs"}},
		},
		State:      sampler.Done,
		Iterations: 100,
		Samples:    3,
		Durations:  stats.NewSeries([]float64{0.001, 0.002, 0.003}, 100),
		Channels: []sampler.ChannelSeries{
			{Spec: bench.ChannelSpec{Name: "allocs"}, Series: stats.NewSeries([]float64{100, 100, 100}, 100)},
		},
		Outputs: []bench.Output{{Name: "buckets", Value: 128}},
	})
	b.Add(sampler.Measurement{
		Case:  &bench.Case{Group: "Containers", Name: "Broken"},
		State: sampler.Failed,
		Err:   errors.New("index out of range"),
	})
	return b.Document()
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := reporter.NewConsole(&buf)
	require.NoError(t, c.Report(testDocument()))

	out := buf.String()
	for _, expected := range []string{
		"Containers", "Map Insert", "size=1024", "time", "throughput", "allocs", "buckets",
		"20.00μs", "Broken", "failed", "index out of range", "1 succeeded, 1 failed",
	} {
		assert.Contains(t, out, expected)
	}
	assert.Equal(t, "console", c.Name())
}

func TestDataFile(t *testing.T) {
	doc := testDocument()
	path := filepath.Join(t.TempDir(), "out", "result.msgpack")

	r := reporter.NewDataFile(path, result.FormatMsgpack)
	require.NoError(t, r.Report(doc))
	assert.Contains(t, r.Name(), "msgpack")

	decoded, err := result.ReadFile(path, result.FormatMsgpack)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestDataFile_WriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	r := reporter.NewDataFile(filepath.Join(blocker, "result.json"), result.FormatJSON)
	assert.Error(t, r.Report(testDocument()))
}

func TestPlotData(t *testing.T) {
	doc := testDocument()
	dir := t.TempDir()

	require.NoError(t, reporter.NewPlotData(dir).Report(doc))

	g := doc.Groups[0]
	succeeded := g.Cases[0]
	for _, channel := range []string{"time", "throughput", "allocs"} {
		rel := reporter.PlotPath(g, succeeded, channel)
		assert.Equal(t, filepath.Join("Containers", "Map%20Insert", "size%3D1024", channel+".csv"), rel)

		data, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, channel)
		assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4, "header plus one line per sample")
	}

	data, err := os.ReadFile(filepath.Join(dir, reporter.PlotPath(g, succeeded, "time")))
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,0.002")

	_, err = os.Stat(filepath.Join(dir, "Containers", "Broken"))
	assert.True(t, os.IsNotExist(err), "failed cases get no plot data")
}
