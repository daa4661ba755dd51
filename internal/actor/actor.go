package actor

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// typeKey returns the reflect.Type used as a handler-table key for T. Using
// reflect.TypeOf((*T)(nil)).Elem() instead of reflect.TypeOf(zeroValue) keeps
// this correct even for T's whose zero value is a nil interface or pointer.
func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

type handlerFunc[S any] func(a *Actor[S], state *S, msg any) ReceiveAction

// ActorBuilder accumulates per-message-type handlers before an actor is
// spawned. It plays the role the source fills with impl_actor!/match arms:
// Go has neither, so handler registration is a builder call per type,
// composed with the free function On (Go disallows generic methods).
type ActorBuilder[S any] struct {
	id       ActorId
	capacity int
	init     func() (*S, error)

	handlers     map[reflect.Type]handlerFunc[S]
	sysOverrides map[reflect.Type]handlerFunc[S]
}

// NewActorBuilder starts a builder for an actor named id, with the given
// domain-mailbox capacity and a state constructor invoked once at spawn.
func NewActorBuilder[S any](id ActorId, capacity int, init func() (*S, error)) *ActorBuilder[S] {
	return &ActorBuilder[S]{
		id:           id,
		capacity:     capacity,
		init:         init,
		handlers:     make(map[reflect.Type]handlerFunc[S]),
		sysOverrides: make(map[reflect.Type]handlerFunc[S]),
	}
}

// On registers a handler for message type T. If T is one of the four
// overridable system messages (Start, Timer, Pause, Resume) the handler
// replaces the default system behavior; T may never be Terminate, Exec, or
// Ping — registering a handler for one of those is a programming error and
// panics at build time rather than silently being ignored at run time.
func On[S any, T any](b *ActorBuilder[S], h func(a *Actor[S], state *S, msg T) ReceiveAction) *ActorBuilder[S] {
	key := typeKey[T]()
	wrapped := func(a *Actor[S], state *S, msg any) ReceiveAction {
		return h(a, state, msg.(T))
	}

	var probe T
	if fixedSysMsg(any(probe)) {
		panic(fmt.Sprintf("actor: handler for %s cannot be overridden", key))
	}
	if overridableSysMsg(any(probe)) {
		b.sysOverrides[key] = wrapped
	} else {
		b.handlers[key] = wrapped
	}
	return b
}

// Actor is one running actor instance: the receive loop, its handler table,
// its timer sub-service, and a back-reference to the owning system used for
// RequestTermination escalation and heartbeat bookkeeping.
type Actor[S any] struct {
	id      ActorId
	mailbox *Mailbox[any]

	handlers     map[reflect.Type]handlerFunc[S]
	sysOverrides map[reflect.Type]handlerFunc[S]

	system *ActorSystem
	timers *timerService
	init   func() (*S, error)

	paused bool
}

// ID returns the actor's id.
func (a *Actor[S]) ID() ActorId { return a.id }

// Self adapts the running actor's own mailbox into a typed ActorHandle[M],
// the Go stand-in for the source's Actor::self() -> ActorHandle<M>.
func Self[M any, S any](a *Actor[S]) *ActorHandle[M] {
	return &ActorHandle[M]{id: a.id, mailbox: a.mailbox}
}

// System returns the owning ActorSystem, for handlers that need to spawn
// further actors or issue queries against sibling actors.
func (a *Actor[S]) System() *ActorSystem { return a.system }

// StartTimer arms a timer that enqueues Timer{ID: id} via the system-
// priority path after delay, repeating every delay thereafter if repeat is
// true. Timers survive Pause/Resume and are torn down automatically when
// the actor's receive loop exits.
func (a *Actor[S]) StartTimer(id int64, delay time.Duration, repeat bool) {
	a.timers.start(id, delay, repeat, func() { _ = a.mailbox.TrySendSys(Timer{ID: id}) })
}

// StopTimer cancels a previously armed timer. A no-op if id is unknown.
func (a *Actor[S]) StopTimer(id int64) {
	a.timers.stop(id)
}

// run is the actor's receive loop: recv, dispatch, apply directive. It
// drives state construction, the Start handshake, Pause's message-type
// filtering, and Terminate's mailbox teardown, all in one goroutine so no
// handler ever races another handler of the same actor (spec invariant 1).
func (a *Actor[S]) run(ctx context.Context, startAck chan<- error) {
	defer a.timers.stopAll()
	defer a.mailbox.Close()

	state, err := a.stateInit()
	if err != nil {
		startAck <- err
		return
	}

	if !a.awaitStart(ctx, state, startAck) {
		return
	}

	for {
		msg, ok := a.mailbox.Recv(ctx)
		if !ok {
			return
		}

		if a.paused {
			switch msg.(type) {
			case Resume, Terminate, Ping:
				// fall through to ordinary dispatch below
			default:
				// spec §4.3: everything else is dropped while paused
				continue
			}
		}

		action := a.dispatch(state, msg)
		switch action {
		case Stop:
			return
		case RequestTermination:
			a.system.requestTermination(a.id)
		}

		if _, isPause := msg.(Pause); isPause && action == Continue {
			a.paused = true
		}
		if _, isResume := msg.(Resume); isResume && action == Continue {
			a.paused = false
		}
	}
}

// awaitStart blocks exclusively on the system-priority channel until Start
// arrives, so a domain message already buffered ahead of Start being sent
// can never be dispatched first (spec invariant: system-before-domain at
// start). The ordinary Recv's priority drain can't give this guarantee by
// itself, since it only prefers sysCh over ch when both already have
// something waiting — it says nothing about which arrives first.
func (a *Actor[S]) awaitStart(ctx context.Context, state *S, startAck chan<- error) bool {
	for {
		select {
		case msg, open := <-a.mailbox.sysCh:
			if !open {
				return false
			}
			if _, isStart := msg.(Start); isStart {
				action := a.dispatch(state, msg)
				startAck <- nil
				return action != Stop
			}
			a.dispatch(state, msg)
		case <-ctx.Done():
			return false
		}
	}
}

func (a *Actor[S]) stateInit() (*S, error) {
	if a.init == nil {
		var s S
		return &s, nil
	}
	return a.init()
}

func (a *Actor[S]) dispatch(state *S, msg any) ReceiveAction {
	if p, isPing := msg.(Ping); isPing {
		p.StoreResponse()
		return Continue
	}
	if e, isExec := msg.(Exec); isExec {
		e.Fn()
		return Continue
	}

	t := reflect.TypeOf(msg)
	if h, found := a.sysOverrides[t]; found {
		return h(a, state, msg)
	}
	if h, found := a.handlers[t]; found {
		return h(a, state, msg)
	}
	if action, isDefaultable := defaultSysReceiveAction(msg); isDefaultable {
		return action
	}
	// No handler registered for a domain message type: per spec this is not
	// an error, the message is simply dropped, mirroring the source's
	// "unhandled message types are silently ignored" default arm.
	return Continue
}

// timerService owns the set of timers armed for one actor.
type timerService struct {
	mu    sync.Mutex
	items map[int64]*timerEntry
}

type timerEntry struct {
	stop func()
}

func newTimerService() *timerService {
	return &timerService{items: make(map[int64]*timerEntry)}
}

func (s *timerService) start(id int64, delay time.Duration, repeat bool, fire func()) {
	s.stop(id)

	done := make(chan struct{})
	var tm *time.Timer
	var tk *time.Ticker

	if repeat {
		tk = time.NewTicker(delay)
		go func() {
			for {
				select {
				case <-tk.C:
					fire()
				case <-done:
					tk.Stop()
					return
				}
			}
		}()
	} else {
		tm = time.NewTimer(delay)
		go func() {
			select {
			case <-tm.C:
				fire()
			case <-done:
				tm.Stop()
				return
			}
		}()
	}

	s.mu.Lock()
	s.items[id] = &timerEntry{stop: func() { close(done) }}
	s.mu.Unlock()
}

func (s *timerService) stop(id int64) {
	s.mu.Lock()
	e, found := s.items[id]
	if found {
		delete(s.items, id)
	}
	s.mu.Unlock()
	if found {
		e.stop()
	}
}

func (s *timerService) stopAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[int64]*timerEntry)
	s.mu.Unlock()
	for _, e := range items {
		e.stop()
	}
}
