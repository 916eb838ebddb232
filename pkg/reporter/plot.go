package reporter

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/shivanshkc/statbench/pkg/names"
	"github.com/shivanshkc/statbench/pkg/result"
)

// PlotData writes one CSV file of per-sample values for every channel of every succeeded
// case, at <dir>/<group>/<case>[/<params>]/<channel>.csv. Failed cases are skipped.
type PlotData struct {
	dir string
}

// NewPlotData returns a reporter that writes plot data under dir.
func NewPlotData(dir string) *PlotData {
	return &PlotData{dir: dir}
}

// Name implements Reporter.
func (p *PlotData) Name() string {
	return "plot data " + p.dir
}

// Report implements Reporter.
func (p *PlotData) Report(doc *result.Document) error {
	for _, g := range doc.Groups {
		for _, rc := range g.Cases {
			if !rc.Succeeded() {
				continue
			}

			for _, name := range rc.ChannelNames() {
				path := filepath.Join(p.dir, PlotPath(g, rc, name))
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return errors.Wrapf(err, "create directory for %s", path)
				}
				if err := os.WriteFile(path, []byte(renderCSV(rc.Channels[name])+"\n"), 0o644); err != nil {
					return errors.Wrapf(err, "write %s", path)
				}
			}
		}
	}
	return nil
}

// PlotPath returns the CSV path of one channel of a case, relative to the plot directory.
func PlotPath(g result.Group, rc result.Case, channel string) string {
	return filepath.FromSlash(names.Path(g.EscapedName, rc.EscapedName, rc.EscapedParamsID, names.Escape(channel))) + ".csv"
}

func renderCSV(ch result.Channel) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"sample", "value"})
	for i, v := range ch.Values {
		tw.AppendRow(table.Row{strconv.Itoa(i), strconv.FormatFloat(v, 'g', -1, 64)})
	}
	return tw.RenderCSV()
}
