package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant 2: bounded mailbox — the (c+1)-th try_send fails with
// ErrReceiverFull.
func TestMailboxTrySendBounded(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[int](3)
	for i := 0; i < 3; i++ {
		require.NoError(t, mb.TrySend(i))
	}
	assert.ErrorIs(t, mb.TrySend(99), ErrReceiverFull)
}

// Invariant 3: closure finality — sends after Close fail with
// ErrReceiverClosed, and buffered messages already enqueued are still
// delivered before Recv reports closed.
func TestMailboxCloseDrainsThenCloses(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[int](4)
	require.NoError(t, mb.TrySend(1))
	require.NoError(t, mb.TrySend(2))
	mb.Close()

	assert.ErrorIs(t, mb.TrySend(3), ErrReceiverClosed)

	ctx := context.Background()
	m, ok := mb.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, m)

	m, ok = mb.Recv(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, m)

	_, ok = mb.Recv(ctx)
	assert.False(t, ok)
}

// Invariant 1 (FIFO) at the mailbox layer: messages sent in order by one
// goroutine are received in the same order.
func TestMailboxFIFO(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[int](16)
	ctx := context.Background()
	for i := 1; i <= 10; i++ {
		require.NoError(t, mb.Send(ctx, i))
	}
	for i := 1; i <= 10; i++ {
		m, ok := mb.Recv(ctx)
		require.True(t, ok)
		assert.Equal(t, i, m)
	}
}

// System-priority messages jump ahead of whatever is waiting on the domain
// channel, so Timer/Ping are never stuck behind a saturated mailbox.
func TestMailboxSysPriority(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[string](4)
	require.NoError(t, mb.TrySend("domain-1"))
	require.NoError(t, mb.TrySendSys("sys-1"))

	m, ok := mb.Recv(context.Background())
	require.True(t, ok)
	assert.Equal(t, "sys-1", m)
}

// Invariant 8: retry_send calls try_send at most k times, spaced by at
// least d, returning as soon as one attempt succeeds.
func TestMailboxRetrySendStopsOnSuccess(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[int](1)
	require.NoError(t, mb.TrySend(0)) // fill capacity so the first retry attempt fails

	start := time.Now()
	go func() {
		time.Sleep(120 * time.Millisecond)
		_, _ = mb.Recv(context.Background()) // drains the one slot, freeing space
	}()

	err := mb.RetrySend(42, 5, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 1*time.Second)
}

func TestMailboxRetrySendExhausts(t *testing.T) {
	t.Parallel()

	mb := NewMailbox[int](1)
	require.NoError(t, mb.TrySend(0))

	start := time.Now()
	err := mb.RetrySend(1, 3, 20*time.Millisecond)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrReceiverFull)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond) // 2 inter-attempt sleeps
}
