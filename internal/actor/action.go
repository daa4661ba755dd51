package actor

import (
	"context"
	"sync"
)

// DataAction, DataRefAction, and BiDataRefAction are the decoupling
// primitive from odin_actor/examples/actions.rs: a producer actor holds one
// of these and invokes it with data it owns, without ever naming the
// consumer's message type. A Go closure over a MsgReceiver[T] plays the
// role the source fills with data_action!/dyn_data_action! macros — there
// is no separate "dynamic" type because the closure has already erased the
// receiver's concrete type by construction.

// DataAction wraps data by value into the target actor's message type and
// delivers it.
type DataAction[D any] struct {
	send    func(ctx context.Context, data D) error
	trySend func(data D) error
}

// NewDataAction builds a DataAction[D] that wraps data with wrap and
// delivers it to recv.
func NewDataAction[D any, T any](recv MsgReceiver[T], wrap func(D) T) DataAction[D] {
	return DataAction[D]{
		send:    func(ctx context.Context, data D) error { return recv.SendMsg(ctx, wrap(data)) },
		trySend: func(data D) error { return recv.TrySendMsg(wrap(data)) },
	}
}

// NewDynDataAction is NewDataAction against the type-erased DynMsgReceiver,
// for storage in a heterogeneous ActionList.
func NewDynDataAction[D any](recv DynMsgReceiver, wrap func(D) any) DataAction[D] {
	return DataAction[D]{
		send:    func(ctx context.Context, data D) error { return recv.SendMsg(ctx, wrap(data)) },
		trySend: func(data D) error { return recv.TrySendMsg(wrap(data)) },
	}
}

// Execute suspends until the wrapped message is accepted or ctx ends.
func (a DataAction[D]) Execute(ctx context.Context, data D) error { return a.send(ctx, data) }

// TryExecute never suspends.
func (a DataAction[D]) TryExecute(data D) error { return a.trySend(data) }

// DataRefAction wraps a reference to data, avoiding a copy when D is large
// or when the producer needs to retain ownership.
type DataRefAction[D any] struct {
	send    func(ctx context.Context, data *D) error
	trySend func(data *D) error
}

func NewDataRefAction[D any, T any](recv MsgReceiver[T], wrap func(*D) T) DataRefAction[D] {
	return DataRefAction[D]{
		send:    func(ctx context.Context, data *D) error { return recv.SendMsg(ctx, wrap(data)) },
		trySend: func(data *D) error { return recv.TrySendMsg(wrap(data)) },
	}
}

func NewDynDataRefAction[D any](recv DynMsgReceiver, wrap func(*D) any) DataRefAction[D] {
	return DataRefAction[D]{
		send:    func(ctx context.Context, data *D) error { return recv.SendMsg(ctx, wrap(data)) },
		trySend: func(data *D) error { return recv.TrySendMsg(wrap(data)) },
	}
}

func (a DataRefAction[D]) Execute(ctx context.Context, data *D) error { return a.send(ctx, data) }
func (a DataRefAction[D]) TryExecute(data *D) error                   { return a.trySend(data) }

// BiDataRefAction wraps a pair of references, used when a handler must join
// freshly-arrived data with some other actor's held state before
// dispatching, e.g. combining a provider's identity with a data update
// (odin_actor/examples/actions.rs's WsServer pattern).
type BiDataRefAction[A any, B any] struct {
	send    func(ctx context.Context, a *A, b *B) error
	trySend func(a *A, b *B) error
}

func NewBiDataRefAction[A any, B any, T any](recv MsgReceiver[T], wrap func(*A, *B) T) BiDataRefAction[A, B] {
	return BiDataRefAction[A, B]{
		send: func(ctx context.Context, a *A, b *B) error {
			return recv.SendMsg(ctx, wrap(a, b))
		},
		trySend: func(a *A, b *B) error { return recv.TrySendMsg(wrap(a, b)) },
	}
}

func NewDynBiDataRefAction[A any, B any](recv DynMsgReceiver, wrap func(*A, *B) any) BiDataRefAction[A, B] {
	return BiDataRefAction[A, B]{
		send: func(ctx context.Context, a *A, b *B) error {
			return recv.SendMsg(ctx, wrap(a, b))
		},
		trySend: func(a *A, b *B) error { return recv.TrySendMsg(wrap(a, b)) },
	}
}

func (a BiDataRefAction[A, B]) Execute(ctx context.Context, x *A, y *B) error {
	return a.send(ctx, x, y)
}
func (a BiDataRefAction[A, B]) TryExecute(x *A, y *B) error { return a.trySend(x, y) }

// ActionList is a subscription fan-out list: many consumer actors (of
// unrelated message-set types) each register one DataAction[D], and the
// producer calls ExecuteAll once per datum without knowing how many
// subscribers exist or what they do with it. Grounded on the
// MsgReceiverList<T>/msg_receiver_list! pattern in odin_actor/src/
// msg_patterns.rs.
type ActionList[D any] struct {
	mu      sync.RWMutex
	actions []DataAction[D]
}

// NewActionList returns an empty subscription list.
func NewActionList[D any]() *ActionList[D] {
	return &ActionList[D]{}
}

// Add registers a DataAction to be invoked on every future ExecuteAll.
func (l *ActionList[D]) Add(a DataAction[D]) {
	l.mu.Lock()
	l.actions = append(l.actions, a)
	l.mu.Unlock()
}

// Len reports the current subscriber count.
func (l *ActionList[D]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.actions)
}

// ExecuteAll invokes every subscriber's TryExecute with data (cloning the
// wrap step per subscriber; D is passed by value so mutation by one
// subscriber's wrap function never affects another's). Errors are
// collected rather than aborting the fan-out early, since one saturated
// subscriber mailbox should never block delivery to the others.
func (l *ActionList[D]) ExecuteAll(data D) []error {
	l.mu.RLock()
	actions := append([]DataAction[D](nil), l.actions...)
	l.mu.RUnlock()

	var errs []error
	for _, a := range actions {
		if err := a.TryExecute(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
