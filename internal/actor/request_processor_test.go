package actor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 6 / S4: n equivalent concurrent requests coalesce into exactly
// one Fetch invocation, and every caller receives that same result within a
// tight skew.
func TestRequestProcessorCoalescesEquivalentRequests(t *testing.T) {
	t.Parallel()

	var invocations atomic.Int32
	p := &RequestProcessor[string, string]{
		SameRequest: func(a, b string) bool { return a == b },
		Fetch: func(ctx context.Context, req string) (string, error) {
			invocations.Add(1)
			time.Sleep(300 * time.Millisecond)
			return "contents-of-" + req, nil
		},
	}

	const callers = 3
	results := make(chan string, callers)
	start := time.Now()
	for i := 0; i < callers; i++ {
		go func() {
			resp, err := p.Process(context.Background(), "foo")
			require.NoError(t, err)
			results <- resp
		}()
	}

	var got []string
	var elapsed time.Duration
	for i := 0; i < callers; i++ {
		got = append(got, <-results)
		elapsed = time.Since(start)
	}

	assert.Equal(t, int32(1), invocations.Load())
	for _, r := range got {
		assert.Equal(t, "contents-of-foo", r)
	}
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestRequestProcessorDoesNotCoalesceDistinctRequests(t *testing.T) {
	t.Parallel()

	var invocations atomic.Int32
	p := &RequestProcessor[string, string]{
		SameRequest: func(a, b string) bool { return a == b },
		Fetch: func(ctx context.Context, req string) (string, error) {
			invocations.Add(1)
			return req, nil
		},
	}

	_, err := p.Process(context.Background(), "a")
	require.NoError(t, err)
	_, err = p.Process(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, int32(2), invocations.Load())
}

// Spec §4.7: distinct (non-equivalent) requests still go through the same
// single background consumer, so their Fetch calls never overlap even when
// issued concurrently.
func TestRequestProcessorSerializesDistinctRequests(t *testing.T) {
	t.Parallel()

	var concurrent atomic.Int32
	var maxConcurrent atomic.Int32
	p := &RequestProcessor[string, string]{
		SameRequest: func(a, b string) bool { return a == b },
		Fetch: func(ctx context.Context, req string) (string, error) {
			n := concurrent.Add(1)
			for {
				max := maxConcurrent.Load()
				if n <= max || maxConcurrent.CompareAndSwap(max, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			concurrent.Add(-1)
			return req, nil
		},
	}

	const callers = 5
	done := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			_, err := p.Process(context.Background(), string(rune('a'+i)))
			assert.NoError(t, err)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < callers; i++ {
		<-done
	}

	assert.Equal(t, int32(1), maxConcurrent.Load())
}
