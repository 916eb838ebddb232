package bench_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/statbench/pkg/bench"
	"github.com/shivanshkc/statbench/pkg/streams"
)

func noop(*bench.Context) error { return nil }

func TestRegistry_Register(t *testing.T) {
	t.Run("Registration Order Is Kept", func(t *testing.T) {
		r := bench.NewRegistry()
		require.NoError(t, r.Register(bench.Case{Group: "B", Name: "1", Op: noop}))
		require.NoError(t, r.Register(bench.Case{Group: "A", Name: "1", Op: noop}))
		require.NoError(t, r.Register(bench.Case{Group: "B", Name: "2", Op: noop}))

		var got []string
		for _, c := range r.Cases() {
			got = append(got, c.FullName())
		}
		assert.Equal(t, []string{"B/1", "A/1", "B/2"}, got)
		assert.Equal(t, 3, r.Len())
	})

	t.Run("Duplicate Identity", func(t *testing.T) {
		r := bench.NewRegistry()
		require.NoError(t, r.Register(bench.Case{Group: "G", Name: "A", Op: noop}))

		err := r.Register(bench.Case{Group: "G", Name: "A", Op: noop})
		require.Error(t, err)
		assert.True(t, errors.Is(err, bench.ErrDuplicateCase))
		assert.Contains(t, err.Error(), "G/A")
		assert.Equal(t, 1, r.Len(), "duplicates must not be merged")
	})

	t.Run("Same Name With Different Params", func(t *testing.T) {
		r := bench.NewRegistry()
		require.NoError(t, r.Register(bench.Case{Group: "G", Name: "A", Op: noop,
			Params: bench.Params{{Name: "n", Value: 1}}}))
		require.NoError(t, r.Register(bench.Case{Group: "G", Name: "A", Op: noop,
			Params: bench.Params{{Name: "n", Value: 2}}}))

		err := r.Register(bench.Case{Group: "G", Name: "A", Op: noop,
			Params: bench.Params{{Name: "n", Value: 2}}})
		assert.True(t, errors.Is(err, bench.ErrDuplicateCase))
		assert.Contains(t, err.Error(), "n=2")
	})

	t.Run("Slash In Names Does Not Collide", func(t *testing.T) {
		r := bench.NewRegistry()
		require.NoError(t, r.Register(bench.Case{Group: "a/b", Name: "c", Op: noop}))
		require.NoError(t, r.Register(bench.Case{Group: "a", Name: "b/c", Op: noop}))
	})

	t.Run("Invalid Cases", func(t *testing.T) {
		testCases := []struct {
			name string
			c    bench.Case
		}{
			{name: "No Group", c: bench.Case{Name: "A", Op: noop}},
			{name: "No Name", c: bench.Case{Group: "G", Op: noop}},
			{name: "No Operation", c: bench.Case{Group: "G", Name: "A"}},
			{name: "Negative Samples", c: bench.Case{Group: "G", Name: "A", Op: noop, Samples: -1}},
			{name: "Duplicate Param", c: bench.Case{Group: "G", Name: "A", Op: noop,
				Params: bench.Params{{Name: "n", Value: 1}, {Name: "n", Value: 2}}}},
			{name: "Reserved Channel", c: bench.Case{Group: "G", Name: "A", Op: noop,
				Channels: []bench.ChannelSpec{{Name: bench.ChannelTime}}}},
			{name: "Duplicate Channel", c: bench.Case{Group: "G", Name: "A", Op: noop,
				Channels: []bench.ChannelSpec{{Name: "items"}, {Name: "items"}}}},
			{name: "Unknown Analysis", c: bench.Case{Group: "G", Name: "A", Op: noop,
				Channels: []bench.ChannelSpec{{Name: "items", Analysis: bench.Analysis(7)}}}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				err := bench.NewRegistry().Register(tc.c)
				assert.True(t, errors.Is(err, bench.ErrInvalidCase), "got %v", err)
			})
		}
	})

	t.Run("Sealed", func(t *testing.T) {
		r := bench.NewRegistry()
		r.Seal()
		assert.True(t, r.Sealed())

		err := r.Register(bench.Case{Group: "G", Name: "A", Op: noop})
		assert.True(t, errors.Is(err, bench.ErrSealed))
	})

	t.Run("Registered Case Is A Copy", func(t *testing.T) {
		r := bench.NewRegistry()
		params := bench.Params{{Name: "n", Value: 1}}
		require.NoError(t, r.Register(bench.Case{Group: "G", Name: "A", Op: noop, Params: params}))

		params[0].Value = 99
		assert.Equal(t, 1, r.Cases()[0].Params[0].Value)
	})

	t.Run("Must Register Panics On Duplicate", func(t *testing.T) {
		r := bench.NewRegistry()
		r.MustRegister(bench.Case{Group: "G", Name: "A", Op: noop})
		assert.Panics(t, func() { r.MustRegister(bench.Case{Group: "G", Name: "A", Op: noop}) })
	})

	t.Run("Failed Registrations Are Recorded", func(t *testing.T) {
		r := bench.NewRegistry()
		require.NoError(t, r.Register(bench.Case{Group: "G", Name: "A", Op: noop}))
		assert.NoError(t, r.Err())

		_ = r.Register(bench.Case{Group: "G", Name: "A", Op: noop})
		_ = r.Register(bench.Case{Group: "G", Name: "B"})
		require.Error(t, r.Err())
		assert.Contains(t, r.Err().Error(), "G/A")
		assert.Contains(t, r.Err().Error(), "G/B")
		assert.Equal(t, 1, r.Len())
	})
}

func TestRegistry_RegisterEach(t *testing.T) {
	r := bench.NewRegistry()
	err := r.RegisterEach(
		bench.Case{Group: "G", Name: "Sort", Op: noop, Params: bench.Params{{Name: "algo", Value: "quick"}}},
		bench.Axis{Name: "size", Values: []any{10, 100}},
		bench.Axis{Name: "sorted", Values: []any{false, true}},
	)
	require.NoError(t, err)

	var ids []string
	for _, c := range r.Cases() {
		ids = append(ids, c.Params.ID())
	}
	assert.Equal(t, []string{
		"algo=quick, size=10, sorted=false",
		"algo=quick, size=10, sorted=true",
		"algo=quick, size=100, sorted=false",
		"algo=quick, size=100, sorted=true",
	}, ids)
}

func TestProduct(t *testing.T) {
	t.Run("No Axes Yields One Empty Set", func(t *testing.T) {
		got := streams.Collect(bench.Product())
		require.Len(t, got, 1)
		assert.Empty(t, got[0])
	})

	t.Run("Empty Axes Are Skipped", func(t *testing.T) {
		got := streams.Collect(bench.Product(
			bench.Axis{Name: "a", Values: []any{1, 2}},
			bench.Axis{Name: "b"},
		))
		require.Len(t, got, 2)
		assert.Equal(t, "a=2", got[1].ID())
	})

	t.Run("Size Is The Product Of Lengths", func(t *testing.T) {
		got := streams.Collect(bench.Product(
			bench.Axis{Name: "a", Values: []any{1, 2, 3}},
			bench.Axis{Name: "b", Values: []any{"x", "y"}},
			bench.Axis{Name: "c", Values: []any{0.5}},
		))
		assert.Len(t, got, 6)
	})
}

func TestContext(t *testing.T) {
	c := &bench.Case{
		Group:    "G",
		Name:     "A",
		Op:       noop,
		Params:   bench.Params{{Name: "size", Value: 64}},
		Channels: []bench.ChannelSpec{{Name: "items"}, {Name: "bytes", Analysis: bench.AnalysisRatePerSecond}},
	}
	ctx := bench.NewContext(c)

	t.Run("Params", func(t *testing.T) {
		assert.Equal(t, 64, ctx.Param("size"))
		assert.Nil(t, ctx.Param("missing"))

		size, err := bench.ParamAs[int](ctx, "size")
		require.NoError(t, err)
		assert.Equal(t, 64, size)

		_, err = bench.ParamAs[string](ctx, "size")
		assert.Error(t, err)
		_, err = bench.ParamAs[int](ctx, "missing")
		assert.Error(t, err)
	})

	t.Run("Concurrent Channel Adds", func(t *testing.T) {
		ch := ctx.Channel("items")
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 1000; j++ {
					ch.Add(0.5)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 4000.0, ch.Drain())
		assert.Equal(t, 0.0, ch.Drain(), "drain resets the aggregate")
	})

	t.Run("Channels In Declaration Order", func(t *testing.T) {
		var got []string
		for _, ch := range ctx.Channels() {
			got = append(got, ch.Spec().Name)
		}
		assert.Equal(t, []string{"items", "bytes"}, got)
	})

	t.Run("Undeclared Channel Panics", func(t *testing.T) {
		assert.Panics(t, func() { ctx.Channel("nope") })
	})

	t.Run("Outputs Keep First Position", func(t *testing.T) {
		ctx.Output("a", 1)
		ctx.Output("b", 2)
		ctx.Output("a", 3)
		assert.Equal(t, []bench.Output{{Name: "a", Value: 3}, {Name: "b", Value: 2}}, ctx.Outputs())
	})
}

func TestCase_Identity(t *testing.T) {
	c := bench.Case{Group: "My Group", Name: "vector<int>", Params: bench.Params{{Name: "n", Value: 10}}}
	id := c.Identity()
	assert.Equal(t, "My%20Group", id.Group.String())
	assert.Equal(t, "vector%3Cint%3E", id.Case.String())
	assert.Equal(t, "n%3D10", id.Params.String())
	assert.Equal(t, fmt.Sprintf("%s/%s/%s", id.Group, id.Case, id.Params), id.Key())
}
