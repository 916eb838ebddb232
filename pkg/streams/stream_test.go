package streams_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/statbench/pkg/streams"
)

// TestStream_Pipelines verifies composed pipelines using a table-driven approach.
func TestStream_Pipelines(t *testing.T) {
	type testCase struct {
		name          string
		setupStream   func() streams.Stream[string]
		expectedItems []string
	}

	testCases := []testCase{
		{
			name: "Map Over A Channel",
			setupStream: func() streams.Stream[string] {
				ch := make(chan int, 3)
				ch <- 1
				ch <- 2
				ch <- 3
				close(ch)
				return streams.Map(streams.New(ch), func(i int) string {
					return fmt.Sprintf("item-%d", i)
				})
			},
			expectedItems: []string{"item-1", "item-2", "item-3"},
		},
		{
			name: "Filter Preserves Order",
			setupStream: func() streams.Stream[string] {
				source := streams.FromSlice([]string{"a/1", "b/1", "a/2", "b/2"})
				return streams.Filter(source, func(s string) bool { return s[0] == 'a' })
			},
			expectedItems: []string{"a/1", "a/2"},
		},
		{
			name: "Chained Map And Filter",
			setupStream: func() streams.Stream[string] {
				source := streams.FromSlice([]int{1, 2, 3, 4, 5, 6})
				even := streams.Filter(source, func(i int) bool { return i%2 == 0 })
				return streams.Map(even, func(i int) string { return fmt.Sprint(i * 10) })
			},
			expectedItems: []string{"20", "40", "60"},
		},
		{
			name: "Generate Stops At First False",
			setupStream: func() streams.Stream[string] {
				count := 0
				return streams.Generate(func() (string, bool) {
					count++
					if count > 2 {
						return "", false
					}
					return fmt.Sprint(count), true
				})
			},
			expectedItems: []string{"1", "2"},
		},
		{
			name: "Empty Slice",
			setupStream: func() streams.Stream[string] {
				return streams.FromSlice[string](nil)
			},
			expectedItems: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stream := tc.setupStream()
			assert.Equal(t, tc.expectedItems, streams.Collect(stream))
		})
	}
}

// TestStream_Next tests the exhausted behaviour of Next.
func TestStream_Next(t *testing.T) {
	ch := make(chan string, 1)
	ch <- "hello"
	close(ch)
	stream := streams.New(ch)

	item, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, "hello", item)

	// Second call should indicate the stream is exhausted.
	item, ok = stream.Next()
	assert.False(t, ok)
	assert.Equal(t, "", item, "Exhausted stream should return zero value.")
}

// TestStream_All verifies early termination of range-over-func loops.
func TestStream_All(t *testing.T) {
	stream := streams.FromSlice([]int{1, 2, 3, 4})

	var seen []int
	for item := range stream.All {
		if item == 3 {
			break
		}
		seen = append(seen, item)
	}
	assert.Equal(t, []int{1, 2}, seen)

	// The stream resumes after the item that ended the loop.
	next, ok := stream.Next()
	require.True(t, ok)
	assert.Equal(t, 4, next)
}

// TestGenerate_Exhausted ensures a finished generator is not called again.
func TestGenerate_Exhausted(t *testing.T) {
	calls := 0
	stream := streams.Generate(func() (int, bool) {
		calls++
		return 0, false
	})

	_, ok := stream.Next()
	assert.False(t, ok)
	_, ok = stream.Next()
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}
