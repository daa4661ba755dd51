package actor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updateMsg struct{ N int }

type updateConsumerState struct {
	mu      sync.Mutex
	updates []int
}

func (s *updateConsumerState) snapshot() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.updates...)
}

func newUpdateConsumerBuilder(state *updateConsumerState) *ActorBuilder[updateConsumerState] {
	b := NewActorBuilder[updateConsumerState]("consumer", 32, func() (*updateConsumerState, error) { return state, nil })
	On(b, func(_ *Actor[updateConsumerState], s *updateConsumerState, m updateMsg) ReceiveAction {
		s.mu.Lock()
		s.updates = append(s.updates, m.N)
		s.mu.Unlock()
		return Continue
	})
	return b
}

// S1 — producer/consumer via DataAction: a Timer-driven counter is pushed
// through an action wired to a consumer actor whose message-set type the
// producer never references.
func TestScenarioDataActionProducerConsumer(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("s1", nil)

	consumerState := &updateConsumerState{}
	consumerHandle, err := SpawnActor[updateConsumerState, updateMsg](sys, newUpdateConsumerBuilder(consumerState))
	require.NoError(t, err)

	action := NewDataAction[int, updateMsg](consumerHandle, func(n int) updateMsg { return updateMsg{N: n} })

	type producerState struct {
		counter int
	}
	pb := NewActorBuilder[producerState]("producer", 8, func() (*producerState, error) { return &producerState{}, nil })
	On(pb, func(_ *Actor[producerState], s *producerState, _ Timer) ReceiveAction {
		s.counter++
		_ = action.TryExecute(s.counter)
		return Continue
	})
	producerHandle, err := SpawnActor[producerState, Timer](sys, pb)
	require.NoError(t, err)

	require.NoError(t, sys.TimeoutStartAll(time.Second))

	for i := int64(0); i < 5; i++ {
		require.NoError(t, producerHandle.SendTimerSys(i))
	}

	require.Eventually(t, func() bool {
		return len(consumerState.snapshot()) == 5
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, consumerState.snapshot())

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

type askSnapshot struct{ Tag string }
type snapshotMsg struct {
	Tag     string
	Payload string
}

type snapshotConsumerState struct {
	mu        sync.Mutex
	snapshots []snapshotMsg
}

// S2 — snapshot via BiDataRefAction: producer joins its held slice with the
// tag carried on the triggering request, without the action itself ever
// naming producer-internal state.
func TestScenarioBiDataRefActionSnapshot(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("s2", nil)

	consumerState := &snapshotConsumerState{}
	cb := NewActorBuilder[snapshotConsumerState]("consumer", 8, func() (*snapshotConsumerState, error) { return consumerState, nil })
	On(cb, func(_ *Actor[snapshotConsumerState], s *snapshotConsumerState, m snapshotMsg) ReceiveAction {
		s.mu.Lock()
		s.snapshots = append(s.snapshots, m)
		s.mu.Unlock()
		return Continue
	})
	consumerHandle, err := SpawnActor[snapshotConsumerState, snapshotMsg](sys, cb)
	require.NoError(t, err)

	action := NewBiDataRefAction[[]int, string, snapshotMsg](consumerHandle, func(data *[]int, tag *string) snapshotMsg {
		return snapshotMsg{Tag: *tag, Payload: fmt.Sprintf("%v", *data)}
	})

	type producerState struct {
		data []int
	}
	pb := NewActorBuilder[producerState]("producer", 8, func() (*producerState, error) { return &producerState{}, nil })
	On(pb, func(_ *Actor[producerState], s *producerState, _ Timer) ReceiveAction {
		s.data = append(s.data, len(s.data)+1)
		return Continue
	})
	On(pb, func(_ *Actor[producerState], s *producerState, m askSnapshot) ReceiveAction {
		tag := m.Tag
		_ = action.TryExecute(&s.data, &tag)
		return Continue
	})
	producerHandle, err := SpawnActor[producerState, askSnapshot](sys, pb)
	require.NoError(t, err)

	require.NoError(t, sys.TimeoutStartAll(time.Second))

	for i := int64(0); i < 3; i++ {
		require.NoError(t, producerHandle.SendTimerSys(i))
	}
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, producerHandle.SendMsg(context.Background(), askSnapshot{Tag: "x"}))

	require.Eventually(t, func() bool {
		consumerState.mu.Lock()
		defer consumerState.mu.Unlock()
		return len(consumerState.snapshots) == 1
	}, time.Second, 10*time.Millisecond)

	consumerState.mu.Lock()
	got := consumerState.snapshots[0]
	consumerState.mu.Unlock()
	assert.Equal(t, "x", got.Tag)
	assert.Equal(t, "[1 2 3]", got.Payload)

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}

type addUpdateAction struct{ Action DataAction[int] }

// S6 — dynamic subscription: a producer with no subscribers at start only
// notifies a consumer that registered a DynDataAction, and only for updates
// emitted after registration.
func TestScenarioDynamicSubscription(t *testing.T) {
	t.Parallel()
	sys := NewActorSystem("s6", nil)

	consumerState := &updateConsumerState{}
	consumerHandle, err := SpawnActor[updateConsumerState, updateMsg](sys, newUpdateConsumerBuilder(consumerState))
	require.NoError(t, err)

	type producerState struct {
		counter int
		actions *ActionList[int]
	}
	pb := NewActorBuilder[producerState]("producer", 8, func() (*producerState, error) {
		return &producerState{actions: NewActionList[int]()}, nil
	})
	On(pb, func(_ *Actor[producerState], s *producerState, _ Timer) ReceiveAction {
		s.counter++
		s.actions.ExecuteAll(s.counter)
		return Continue
	})
	On(pb, func(_ *Actor[producerState], s *producerState, m addUpdateAction) ReceiveAction {
		s.actions.Add(m.Action)
		return Continue
	})
	producerHandle, err := SpawnActor[producerState, addUpdateAction](sys, pb)
	require.NoError(t, err)

	require.NoError(t, sys.TimeoutStartAll(time.Second))

	// one tick before any subscriber exists: must produce no delivery
	require.NoError(t, producerHandle.SendTimerSys(0))
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, consumerState.snapshot())

	dynAction := NewDynDataAction[int](AsDyn(consumerHandle), func(n int) any { return updateMsg{N: n} })
	require.NoError(t, producerHandle.SendMsg(context.Background(), addUpdateAction{Action: dynAction}))
	time.Sleep(30 * time.Millisecond)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, producerHandle.SendTimerSys(i))
	}

	require.Eventually(t, func() bool {
		return len(consumerState.snapshot()) == 3
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, []int{2, 3, 4}, consumerState.snapshot())

	require.NoError(t, sys.TimeoutTerminateAll(time.Second))
}
