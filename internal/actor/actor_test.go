package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numMsg struct{ N int }

type recorderState struct {
	mu            sync.Mutex
	startSeen     bool
	firstWasStart bool
	received      []int
}

func (s *recorderState) snapshot() (bool, bool, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startSeen, s.firstWasStart, append([]int(nil), s.received...)
}

// Invariant 4: every actor receives exactly one Start before any domain
// message, even when a domain message was already waiting in the mailbox.
func TestActorStartBeforeDomain(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("invariant4", nil)

	state := &recorderState{}
	b := NewActorBuilder[recorderState]("recorder", 8, func() (*recorderState, error) { return state, nil })
	On(b, func(_ *Actor[recorderState], s *recorderState, _ Start) ReceiveAction {
		s.mu.Lock()
		s.startSeen = true
		s.mu.Unlock()
		return Continue
	})
	On(b, func(_ *Actor[recorderState], s *recorderState, m numMsg) ReceiveAction {
		s.mu.Lock()
		if len(s.received) == 0 {
			s.firstWasStart = s.startSeen
		}
		s.received = append(s.received, m.N)
		s.mu.Unlock()
		return Continue
	})

	h, err := SpawnActor[recorderState, numMsg](sys, b)
	require.NoError(t, err)

	require.NoError(t, h.TrySendMsg(numMsg{N: 1}))
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	require.Eventually(t, func() bool {
		_, _, received := state.snapshot()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	startSeen, firstWasStart, _ := state.snapshot()
	assert.True(t, startSeen)
	assert.True(t, firstWasStart)

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

// Invariant 1: FIFO per handle — messages sent in order via one handle
// (awaiting each send) are observed by the handler in that order.
func TestActorFIFOPerHandle(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("invariant1", nil)

	state := &recorderState{}
	b := NewActorBuilder[recorderState]("fifo", 32, func() (*recorderState, error) { return state, nil })
	On(b, func(_ *Actor[recorderState], s *recorderState, m numMsg) ReceiveAction {
		s.mu.Lock()
		s.received = append(s.received, m.N)
		s.mu.Unlock()
		return Continue
	})

	h, err := SpawnActor[recorderState, numMsg](sys, b)
	require.NoError(t, err)
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	ctx := context.Background()
	for i := 1; i <= 20; i++ {
		require.NoError(t, h.SendMsg(ctx, numMsg{N: i}))
	}

	require.Eventually(t, func() bool {
		_, _, received := state.snapshot()
		return len(received) == 20
	}, time.Second, 10*time.Millisecond)

	_, _, received := state.snapshot()
	for i, n := range received {
		assert.Equal(t, i+1, n)
	}

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

// Invariant 3: closure finality — after Terminate is accepted, subsequent
// SendMsg calls fail with ErrReceiverClosed.
func TestActorClosureFinality(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("invariant3", nil)

	b := NewActorBuilder[recorderState]("closer", 4, func() (*recorderState, error) { return &recorderState{}, nil })
	h, err := SpawnActor[recorderState, numMsg](sys, b)
	require.NoError(t, err)
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))

	err = h.SendMsg(context.Background(), numMsg{N: 1})
	assert.ErrorIs(t, err, ErrReceiverClosed)
}

// Pause restricts acceptance to Resume/Terminate/Ping; domain messages sent
// while paused are dropped rather than queued for later delivery.
func TestActorPauseDropsDomainMessages(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("pause", nil)

	state := &recorderState{}
	b := NewActorBuilder[recorderState]("pausable", 8, func() (*recorderState, error) { return state, nil })
	On(b, func(_ *Actor[recorderState], s *recorderState, m numMsg) ReceiveAction {
		s.mu.Lock()
		s.received = append(s.received, m.N)
		s.mu.Unlock()
		return Continue
	})

	h, err := SpawnActor[recorderState, numMsg](sys, b)
	require.NoError(t, err)
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	require.NoError(t, h.SendPauseSys())
	time.Sleep(50 * time.Millisecond) // let Pause land before the probe message
	require.NoError(t, h.SendMsg(context.Background(), numMsg{N: 1}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, h.SendResumeSys())
	require.NoError(t, h.SendMsg(context.Background(), numMsg{N: 2}))

	require.Eventually(t, func() bool {
		_, _, received := state.snapshot()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	_, _, received := state.snapshot()
	assert.Equal(t, []int{2}, received)

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}
