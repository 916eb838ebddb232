// Package streams provides generic, pull-based stream iterators.
//
// A Stream is a lazy sequence. Transformations such as Map and Filter wrap the upstream
// closure instead of spawning goroutines and channels, so a pipeline runs synchronously in
// the consumer's goroutine and only does work when Next is called.
//
// The selector uses streams to filter registered cases in registration order, and the
// parameter generator exposes its cartesian product as a stream.
//
//	cases := streams.Collect(streams.Filter(streams.FromSlice(all), keep))
package streams

// Stream represents a lazy, pull-based iterator over a sequence of items of type T.
//
// The zero value of a Stream is not useful and will panic if Next() is called.
type Stream[T any] struct {
	// next returns the next item and a boolean indicating if the item is valid.
	next func() (T, bool)
}

// New creates a new Stream from a read-only channel.
//
// The returned Stream produces items until the source channel is closed and drained.
func New[T any](sourceChan <-chan T) Stream[T] {
	return Stream[T]{
		next: func() (T, bool) {
			val, ok := <-sourceChan
			return val, ok
		},
	}
}

// FromSlice creates a Stream that yields the items of a slice in order.
//
// The slice is not copied. It must not be modified while the stream is consumed.
func FromSlice[T any](items []T) Stream[T] {
	index := 0
	return Stream[T]{
		next: func() (T, bool) {
			if index >= len(items) {
				var zero T
				return zero, false
			}
			item := items[index]
			index++
			return item, true
		},
	}
}

// Generate creates a Stream from a producer function. The stream ends the first time
// the producer returns false.
func Generate[T any](next func() (T, bool)) Stream[T] {
	done := false
	return Stream[T]{
		next: func() (T, bool) {
			if done {
				var zero T
				return zero, false
			}
			val, ok := next()
			if !ok {
				done = true
			}
			return val, ok
		},
	}
}

// Map returns a new Stream that applies the conversion function `conv` to each
// item from a source Stream.
//
// This is a lazy operation. The conversion function is not called until the
// Next() method of the returned Stream is invoked.
func Map[T, U any](sourceStream Stream[T], conv func(T) U) Stream[U] {
	return Stream[U]{
		next: func() (U, bool) {
			// Pull the next item from the upstream source stream.
			val, ok := sourceStream.Next()
			if !ok {
				var zeroU U
				return zeroU, false
			}
			return conv(val), true
		},
	}
}

// Filter returns a new Stream that yields only the items for which keep returns true.
// Relative order is preserved.
func Filter[T any](sourceStream Stream[T], keep func(T) bool) Stream[T] {
	return Stream[T]{
		next: func() (T, bool) {
			for {
				val, ok := sourceStream.Next()
				if !ok {
					return val, false
				}
				if keep(val) {
					return val, true
				}
			}
		},
	}
}

// Collect drains the stream into a slice. It returns nil for an empty stream.
func Collect[T any](s Stream[T]) []T {
	var out []T
	for item := range s.All {
		out = append(out, item)
	}
	return out
}

// Next produces the next item from the stream.
//
// It returns the item and a boolean `ok`. The `ok` flag is true if an item was
// successfully produced, and false if the stream is exhausted.
func (s *Stream[T]) Next() (T, bool) {
	return s.next()
}

// All is a more convenient way of looping over the Stream for Go 1.22+
func (s *Stream[T]) All(yield func(T) bool) {
	for {
		event, ok := s.next()
		if !ok {
			return
		}

		if !yield(event) {
			return
		}
	}
}
