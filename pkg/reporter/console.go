package reporter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/result"
	"github.com/shivanshkc/statbench/pkg/stats"
	"github.com/shivanshkc/statbench/pkg/utils/miscutils"
)

// Console prints one table per group.
type Console struct {
	w io.Writer
}

// NewConsole returns a reporter that writes tables to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Name implements Reporter.
func (c *Console) Name() string {
	return "console"
}

// Report implements Reporter.
func (c *Console) Report(doc *result.Document) error {
	for _, g := range doc.Groups {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.SetTitle(g.Name)
		tw.AppendHeader(table.Row{"Case", "Params", "Channel", "Iterations", "Samples",
			"Mean", "Std Dev", "Median", "Max", "Confidence Interval"})

		for _, rc := range g.Cases {
			if !rc.Succeeded() {
				tw.AppendRow(table.Row{rc.Name, rc.ParamsID, text.FgRed.Sprint("failed"),
					"", "", text.FgRed.Sprint(rc.Error)})
				continue
			}

			for i, name := range rc.ChannelNames() {
				row := table.Row{"", "", name, "", ""}
				if i == 0 {
					row = table.Row{rc.Name, rc.ParamsID, name, rc.Iterations, rc.Samples}
				}
				tw.AppendRow(append(row, statCells(name, rc.Channels[name].Stat)...))
			}
			for _, o := range rc.CustomOutputs {
				tw.AppendRow(table.Row{"", "", o.Name, "", "", miscutils.FormatSI(o.Value, "")})
			}
		}

		if _, err := fmt.Fprintln(c.w, tw.Render()); err != nil {
			return err
		}
	}

	succeeded, failed := doc.Counts()
	summary := fmt.Sprintf("%d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		summary = text.FgRed.Sprint(summary)
	}
	_, err := fmt.Fprintln(c.w, summary)
	return err
}

// statCells formats the statistics of one channel. Time is per iteration, everything
// else is a plain quantity.
func statCells(channel string, s stats.Statistics) table.Row {
	format := func(v float64) string { return miscutils.FormatSI(v, "") }
	switch channel {
	case bench.ChannelTime:
		format = miscutils.FormatSeconds
	case bench.ChannelThroughput:
		format = func(v float64) string { return miscutils.FormatSI(v, "/s") }
	}

	ci := fmt.Sprintf("[%s, %s] (%.4g%%)", format(s.ConfidenceLower), format(s.ConfidenceUpper), s.ConfidenceLevel*100)
	return table.Row{format(s.Mean), format(s.StandardDeviation), format(s.Median), format(s.Max), ci}
}
