// Package clock provides the time sources used to measure samples.
//
// A Clock reports monotonic offsets from an arbitrary origin rather than wall-clock
// instants. This keeps the timed region free of time.Time bookkeeping: a sample is
// measured as the difference of two Now() calls.
package clock

import (
	"sync"
	"time"
)

// resolutionProbes is the number of clock deltas observed when probing the resolution.
const resolutionProbes = 64

// Clock is a monotonic, high-resolution time source with a known minimum resolution.
type Clock interface {
	// Now returns the monotonic offset from the clock's origin.
	Now() time.Duration
	// Resolution returns the smallest duration the clock can distinguish. It is always positive.
	Resolution() time.Duration
}

// Monotonic is a Clock backed by the monotonic reading of time.Now.
type Monotonic struct {
	origin     time.Time
	resolution time.Duration
}

// NewMonotonic returns a Monotonic clock.
//
// If resolution is zero or negative, it is probed with MeasureResolution.
func NewMonotonic(resolution time.Duration) *Monotonic {
	m := &Monotonic{origin: time.Now()}
	if resolution <= 0 {
		resolution = MeasureResolution(m.Now)
	}
	m.resolution = resolution
	return m
}

// Now implements Clock.
func (m *Monotonic) Now() time.Duration {
	return time.Since(m.origin)
}

// Resolution implements Clock.
func (m *Monotonic) Resolution() time.Duration {
	return m.resolution
}

// MeasureResolution estimates the resolution of the given time source as the smallest
// non-zero difference between consecutive readings over a fixed number of probes.
//
// It never returns less than one nanosecond.
func MeasureResolution(now func() time.Duration) time.Duration {
	smallest := time.Duration(0)
	for i := 0; i < resolutionProbes; i++ {
		start := now()
		// Spin until the reading changes.
		next := now()
		for next == start {
			next = now()
		}

		if delta := next - start; smallest == 0 || delta < smallest {
			smallest = delta
		}
	}

	if smallest < time.Nanosecond {
		return time.Nanosecond
	}
	return smallest
}

// Fake is a manually advanced Clock for tests. It is safe for concurrent use.
type Fake struct {
	mu         sync.Mutex
	now        time.Duration
	resolution time.Duration
}

// NewFake returns a Fake clock at offset zero with the given resolution.
// A non-positive resolution defaults to one nanosecond.
func NewFake(resolution time.Duration) *Fake {
	if resolution <= 0 {
		resolution = time.Nanosecond
	}
	return &Fake{resolution: resolution}
}

// Now implements Clock.
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Resolution implements Clock.
func (f *Fake) Resolution() time.Duration {
	return f.resolution
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}
