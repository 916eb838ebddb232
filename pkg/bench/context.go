package bench

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Context is handed to the hooks and to every iteration of a case's operation.
//
// The channel accumulators and Output are safe for concurrent use, so an operation that
// fans out to goroutines may report from any of them, provided it waits for them before
// returning. Values reported after the operation returns land in the next sample.
type Context struct {
	c          *Case
	iterations atomic.Int64
	channels   map[string]*Channel

	mu      sync.Mutex
	outputs []Output
}

// NewContext returns the invocation context of a case with its declared channels.
func NewContext(c *Case) *Context {
	ctx := &Context{c: c, channels: make(map[string]*Channel, len(c.Channels))}
	for _, spec := range c.Channels {
		ctx.channels[spec.Name] = &Channel{spec: spec}
	}
	return ctx
}

// Case returns the case being run.
func (ctx *Context) Case() *Case {
	return ctx.c
}

// Param returns the value of a named parameter, or nil if the case has no such parameter.
func (ctx *Context) Param(name string) any {
	v, _ := ctx.c.Params.Get(name)
	return v
}

// Params returns the parameters of the case.
func (ctx *Context) Params() Params {
	return ctx.c.Params
}

// Iterations returns the per-batch iteration count of the current phase.
func (ctx *Context) Iterations() int {
	return int(ctx.iterations.Load())
}

// SetIterations is called by the sampler when it starts a batch of n iterations.
func (ctx *Context) SetIterations(n int) {
	ctx.iterations.Store(int64(n))
}

// Channel returns the accumulator of a declared custom channel.
//
// It panics for undeclared names; inside an operation this fails the case.
func (ctx *Context) Channel(name string) *Channel {
	ch, ok := ctx.channels[name]
	if !ok {
		panic(fmt.Sprintf("channel %q is not declared by case %s", name, ctx.c.FullName()))
	}
	return ch
}

// Channels returns the accumulators in declaration order.
func (ctx *Context) Channels() []*Channel {
	out := make([]*Channel, 0, len(ctx.c.Channels))
	for _, spec := range ctx.c.Channels {
		out = append(out, ctx.channels[spec.Name])
	}
	return out
}

// ResetChannels discards every accumulated channel value.
func (ctx *Context) ResetChannels() {
	for _, ch := range ctx.channels {
		ch.Drain()
	}
}

// Output records a custom output without statistics. Setting the same name again
// overwrites the value but keeps its original position.
func (ctx *Context) Output(name string, value float64) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	for i := range ctx.outputs {
		if ctx.outputs[i].Name == name {
			ctx.outputs[i].Value = value
			return
		}
	}
	ctx.outputs = append(ctx.outputs, Output{Name: name, Value: value})
}

// Outputs returns a copy of the recorded custom outputs in first-set order.
func (ctx *Context) Outputs() []Output {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	if len(ctx.outputs) == 0 {
		return nil
	}
	return append([]Output(nil), ctx.outputs...)
}

// Output is a named value reported once per case.
type Output struct {
	Name  string
	Value float64
}

// Channel is a thread-safe accumulation point for one custom channel.
type Channel struct {
	spec ChannelSpec
	bits atomic.Uint64
}

// Spec returns the channel declaration.
func (ch *Channel) Spec() ChannelSpec {
	return ch.spec
}

// Add adds v to the current sample's aggregate.
func (ch *Channel) Add(v float64) {
	for {
		old := ch.bits.Load()
		updated := math.Float64bits(math.Float64frombits(old) + v)
		if ch.bits.CompareAndSwap(old, updated) {
			return
		}
	}
}

// Drain returns the current aggregate and resets it to zero.
func (ch *Channel) Drain() float64 {
	return math.Float64frombits(ch.bits.Swap(0))
}

// ParamAs returns the named parameter converted to T.
func ParamAs[T any](ctx *Context, name string) (T, error) {
	var zero T
	raw, ok := ctx.c.Params.Get(name)
	if !ok {
		return zero, errors.Newf("case %s has no parameter %q", ctx.c.FullName(), name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, errors.Newf("parameter %q of case %s is %T, not %T", name, ctx.c.FullName(), raw, zero)
	}
	return v, nil
}
