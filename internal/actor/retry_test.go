package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepTrigger struct{ D time.Duration }
type filler struct{}
type bigMsg struct{}
type wakeMsg struct{}

type retryConsumerState struct {
	mu  sync.Mutex
	log []string
}

func (s *retryConsumerState) append(tag string) {
	s.mu.Lock()
	s.log = append(s.log, tag)
	s.mu.Unlock()
}

func (s *retryConsumerState) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

// S3 / Invariant 8: when the mailbox is saturated, try_send fails
// immediately with ErrReceiverFull; a subsequent retry_send for a compact
// wake-up message succeeds once capacity frees up, attempting at most k
// times spaced by the configured backoff, without ever re-attempting the
// oversized message that was dropped.
func TestRetrySendDeliversWakeNotBigMessage(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("s3", nil)

	state := &retryConsumerState{}
	b := NewActorBuilder[retryConsumerState]("sleeper", 1, func() (*retryConsumerState, error) { return state, nil })
	On(b, func(_ *Actor[retryConsumerState], s *retryConsumerState, m sleepTrigger) ReceiveAction {
		time.Sleep(m.D)
		s.append("sleepTrigger")
		return Continue
	})
	On(b, func(_ *Actor[retryConsumerState], s *retryConsumerState, _ filler) ReceiveAction {
		s.append("filler")
		return Continue
	})
	On(b, func(_ *Actor[retryConsumerState], s *retryConsumerState, _ bigMsg) ReceiveAction {
		s.append("bigMsg")
		return Continue
	})
	On(b, func(_ *Actor[retryConsumerState], s *retryConsumerState, _ wakeMsg) ReceiveAction {
		s.append("wakeMsg")
		return Continue
	})

	h, err := SpawnActor[retryConsumerState, sleepTrigger](sys, b)
	require.NoError(t, err)
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	require.NoError(t, h.SendMsg(context.Background(), sleepTrigger{D: 600 * time.Millisecond}))
	// give the sleeper a moment to dequeue the trigger and enter its sleep,
	// freeing the single capacity-1 slot, before we refill it
	time.Sleep(30 * time.Millisecond)

	fillerRecv := As[filler](h)
	require.NoError(t, fillerRecv.TrySendMsg(filler{}))

	bigRecv := As[bigMsg](h)
	err = bigRecv.TrySendMsg(bigMsg{})
	assert.ErrorIs(t, err, ErrReceiverFull)

	wakeRecv := As[wakeMsg](h)
	start := time.Now()
	err = retrySend(wakeRecv, wakeMsg{}, 8, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Less(t, elapsed, 2*time.Second)

	require.Eventually(t, func() bool {
		for _, l := range state.snapshot() {
			if l == "wakeMsg" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	assert.NotContains(t, state.snapshot(), "bigMsg")

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

// retrySend mirrors Mailbox.RetrySend's policy at the MsgReceiver boundary:
// try, and on failure short of ErrReceiverClosed, sleep backoff and retry,
// up to maxAttempts total attempts.
func retrySend[T any](r TryMsgReceiver[T], msg T, maxAttempts int, backoff time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := r.TrySendMsg(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if err == ErrReceiverClosed || attempt == maxAttempts-1 {
			break
		}
		time.Sleep(backoff)
	}
	return lastErr
}
