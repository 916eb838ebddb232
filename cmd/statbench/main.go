// Command statbench is an example benchmark binary. It covers parameterized cases, custom
// channels, custom outputs and fixtures.
package main

import (
	"bytes"
	"crypto/rand"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/flate"

	"github.com/shivanshkc/statbench"
	"github.com/shivanshkc/statbench/pkg/bench"
)

func main() {
	reg := bench.NewRegistry()
	registerStrings(reg)
	registerSort(reg)
	registerCompression(reg)
	statbench.Main(reg)
}

func registerStrings(reg *bench.Registry) {
	reg.MustRegister(bench.Case{
		Group: "Strings",
		Name:  "Builder",
		Op: func(*bench.Context) error {
			var b strings.Builder
			for i := 0; i < 16; i++ {
				b.WriteString("statbench")
			}
			_ = b.String()
			return nil
		},
	})

	reg.MustRegister(bench.Case{
		Group: "Strings",
		Name:  "Concat",
		Op: func(*bench.Context) error {
			s := ""
			for i := 0; i < 16; i++ {
				s += "statbench"
			}
			_ = s
			return nil
		},
	})
}

func registerSort(reg *bench.Registry) {
	var input, work []int

	_ = reg.RegisterEach(bench.Case{
		Group: "Sort",
		Name:  "Ints",
		Setup: func(ctx *bench.Context) error {
			size, err := bench.ParamAs[int](ctx, "size")
			if err != nil {
				return err
			}
			input = make([]int, size)
			for i := range input {
				input[i] = (i * 7919) % size
			}
			work = make([]int, size)
			return nil
		},
		Op: func(*bench.Context) error {
			copy(work, input)
			slices.Sort(work)
			return nil
		},
	}, bench.Axis{Name: "size", Values: []any{64, 1024, 16384}})
}

func registerCompression(reg *bench.Registry) {
	var payload []byte
	var out bytes.Buffer

	_ = reg.RegisterEach(bench.Case{
		Group: "Compression",
		Name:  "Deflate",
		Channels: []bench.ChannelSpec{
			{Name: "output_bytes", Analysis: bench.AnalysisMean},
			{Name: "input_rate", Analysis: bench.AnalysisRatePerSecond},
		},
		Setup: func(ctx *bench.Context) error {
			payload = make([]byte, 64<<10)
			if _, err := rand.Read(payload[:len(payload)/2]); err != nil {
				return errors.Wrap(err, "generate payload")
			}
			return nil
		},
		Op: func(ctx *bench.Context) error {
			level, err := bench.ParamAs[int](ctx, "level")
			if err != nil {
				return err
			}

			out.Reset()
			w, err := flate.NewWriter(&out, level)
			if err != nil {
				return err
			}
			if _, err := w.Write(payload); err != nil {
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}

			ctx.Channel("output_bytes").Add(float64(out.Len()))
			ctx.Channel("input_rate").Add(float64(len(payload)))
			ctx.Output("compression_ratio", float64(len(payload))/float64(out.Len()))
			return nil
		},
	}, bench.Axis{Name: "level", Values: []any{flate.BestSpeed, flate.DefaultCompression, flate.BestCompression}})
}
