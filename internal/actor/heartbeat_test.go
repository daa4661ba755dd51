package actor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockFor struct{ D time.Duration }
type blockerState struct{}

// S5 / Invariant 7: an actor that blocks its handler past the heartbeat
// tolerance is reported unresponsive; once it resumes, its cycle numbers
// keep increasing from at least the cycle it was declared unresponsive at.
func TestHeartbeatDetectsUnresponsiveThenRecovers(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("s5", nil)

	var mu sync.Mutex
	var events []Event
	sys.SetObserver(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	b := NewActorBuilder[blockerState]("blocker", 8, func() (*blockerState, error) { return &blockerState{}, nil })
	On(b, func(_ *Actor[blockerState], _ *blockerState, m blockFor) ReceiveAction {
		time.Sleep(m.D)
		return Continue
	})
	h, err := SpawnActor[blockerState, blockFor](sys, b)
	require.NoError(t, err)
	require.NoError(t, sys.TimeoutStartAll(time.Second))

	sys.StartHeartbeat(150*time.Millisecond, 100*time.Millisecond)
	require.NoError(t, h.SendMsg(context.Background(), blockFor{D: 900 * time.Millisecond}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			if _, ok := ev.(UnresponsiveActor); ok {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			if _, ok := ev.(ActorHeartbeat); ok {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	var sawUnresponsive bool
	var unresponsiveCycle, lastHeartbeatCycle, prevCycle uint32
	monotone := true
	for _, ev := range events {
		switch e := ev.(type) {
		case UnresponsiveActor:
			if !sawUnresponsive {
				unresponsiveCycle = e.Cycle
				sawUnresponsive = true
			}
		case ActorHeartbeat:
			if e.Status.LastCycle < prevCycle {
				monotone = false
			}
			prevCycle = e.Status.LastCycle
			lastHeartbeatCycle = e.Status.LastCycle
		}
	}
	mu.Unlock()

	assert.True(t, sawUnresponsive)
	assert.True(t, monotone)
	assert.GreaterOrEqual(t, lastHeartbeatCycle, unresponsiveCycle)

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

func TestPingResponseBitPacking(t *testing.T) {
	t.Parallel()

	resp := new(atomic.Uint64)
	p := Ping{Cycle: 42, Sent: time.Now().Add(-5 * time.Millisecond), Response: resp}
	p.StoreResponse()

	cycle, nanos := UnpackPingResponse(resp.Load())
	assert.Equal(t, uint32(42), cycle)
	assert.GreaterOrEqual(t, nanos, uint64(4*time.Millisecond))
}
