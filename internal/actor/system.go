package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// actorEntry is the system's bookkeeping record for one actor: its mailbox,
// the channel its Start handler acks on, and a done signal closed when its
// receive loop returns. reserved marks a slot claimed by a PreActorHandle
// that has not yet been promoted to a running actor.
type actorEntry struct {
	id       ActorId
	typeName string
	mailbox  *Mailbox[any]
	startAck chan error
	done     chan struct{}
	reserved bool
}

type requestKind int

const (
	reqTerminate requestKind = iota
	reqHeartbeatNow
)

type systemRequest struct {
	kind requestKind
	id   ActorId
}

// ActorSystem owns actor registration, spawn-order bookkeeping, the
// start_all/terminate_all lifecycle, and the heartbeat service. It mirrors
// odin_actor::ActorSystem, with ActorSystemRequest handled by an internal
// goroutine instead of an actor of its own.
type ActorSystem struct {
	Name string

	mu     sync.RWMutex
	actors map[ActorId]*actorEntry
	order  []ActorId

	requests chan systemRequest
	stopOnce sync.Once
	stopCh   chan struct{}

	heartbeat *heartbeatService
	logger    *slog.Logger

	observerMu sync.RWMutex
	observer   EventObserver
}

// SetObserver installs the system-wide Event sink (the TUI dashboard is the
// intended consumer). Only one observer is supported; a later call replaces
// an earlier one.
func (sys *ActorSystem) SetObserver(obs EventObserver) {
	sys.observerMu.Lock()
	sys.observer = obs
	sys.observerMu.Unlock()
}

func (sys *ActorSystem) emit(ev Event) {
	sys.observerMu.RLock()
	obs := sys.observer
	sys.observerMu.RUnlock()
	if obs != nil {
		obs(ev)
	}
}

// StartHeartbeat arms the periodic ping cycle across all currently and
// subsequently registered actors.
func (sys *ActorSystem) StartHeartbeat(interval, tolerance time.Duration) {
	sys.heartbeat.Start(interval, tolerance)
}

// NewActorSystem constructs an empty system. logger may be nil, in which
// case slog.Default() is used.
func NewActorSystem(name string, logger *slog.Logger) *ActorSystem {
	if logger == nil {
		logger = slog.Default()
	}
	sys := &ActorSystem{
		Name:     name,
		actors:   make(map[ActorId]*actorEntry),
		requests: make(chan systemRequest, 64),
		stopCh:   make(chan struct{}),
		logger:   logger.With("actor_system", name),
	}
	sys.heartbeat = newHeartbeatService(sys)
	go sys.serve()
	return sys
}

func (sys *ActorSystem) serve() {
	for {
		select {
		case req := <-sys.requests:
			switch req.kind {
			case reqTerminate:
				if err := sys.Terminate(req.id); err != nil {
					sys.logger.Warn("requested termination failed", "actor", req.id, "error", err)
				}
			case reqHeartbeatNow:
				sys.heartbeat.triggerNow()
			}
		case <-sys.stopCh:
			return
		}
	}
}

// requestTermination is the ActorSystemRequest::RequestTermination path: an
// actor's handler returned RequestTermination, and the request is routed
// here for out-of-band delivery instead of the actor terminating itself
// (spec §4.2 — only the system escalates Terminate).
func (sys *ActorSystem) requestTermination(id ActorId) {
	select {
	case sys.requests <- systemRequest{kind: reqTerminate, id: id}:
	default:
		sys.logger.Warn("system request queue full, dropping termination request", "actor", id)
	}
}

// RequestHeartbeat is the ActorSystemRequest::RequestHeartbeat path: any
// caller (typically the TUI) can ask for an out-of-cycle heartbeat sweep.
func (sys *ActorSystem) RequestHeartbeat() {
	select {
	case sys.requests <- systemRequest{kind: reqHeartbeatNow}:
	default:
	}
}

// SpawnActor builds and starts the receive-loop goroutine for an actor
// described by b, registers it under its id, and returns a typed handle to
// it. Spawn order is preserved for StartAll/TerminateAll.
func SpawnActor[S any, M any](sys *ActorSystem, b *ActorBuilder[S]) (*ActorHandle[M], error) {
	sys.mu.Lock()
	if _, exists := sys.actors[b.id]; exists {
		sys.mu.Unlock()
		return nil, OpFailed(fmt.Sprintf("duplicate actor id %q", b.id), nil)
	}
	mailbox := NewMailbox[any](b.capacity)
	entry := &actorEntry{
		id:       b.id,
		typeName: fmt.Sprintf("%T", *new(S)),
		mailbox:  mailbox,
		startAck: make(chan error, 1),
		done:     make(chan struct{}),
	}
	sys.actors[b.id] = entry
	sys.order = append(sys.order, b.id)
	sys.mu.Unlock()

	a := &Actor[S]{
		id:           b.id,
		mailbox:      mailbox,
		handlers:     b.handlers,
		sysOverrides: b.sysOverrides,
		system:       sys,
		timers:       newTimerService(),
		init:         b.init,
	}
	sys.heartbeat.register(b.id, mailbox)
	sys.emit(AddActor{ID: b.id, TypeName: entry.typeName})

	go func() {
		defer func() {
			sys.heartbeat.unregister(b.id)
			close(entry.done)
		}()
		a.run(context.Background(), entry.startAck)
	}()

	return &ActorHandle[M]{id: b.id, mailbox: mailbox}, nil
}

// NewPreActorHandle reserves an actor id and mailbox ahead of spawning, so
// two mutually-referencing actors can each receive the other's handle
// before either is actually built (spec §9, "cycles in the actor graph").
func NewPreActorHandle[M any](sys *ActorSystem, id ActorId, capacity int) (*PreActorHandle[M], error) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	if _, exists := sys.actors[id]; exists {
		return nil, OpFailed(fmt.Sprintf("duplicate actor id %q", id), nil)
	}
	mailbox := NewMailbox[any](capacity)
	sys.actors[id] = &actorEntry{
		id:       id,
		mailbox:  mailbox,
		startAck: make(chan error, 1),
		done:     make(chan struct{}),
		reserved: true,
	}
	return &PreActorHandle[M]{id: id, mailbox: mailbox, system: sys}, nil
}

// SpawnPreActor consumes a PreActorHandle exactly once, wiring b's state and
// handlers onto the already-reserved mailbox and starting its receive loop.
func SpawnPreActor[S any, M any](pre *PreActorHandle[M], b *ActorBuilder[S]) (*ActorHandle[M], error) {
	if !pre.tryPromote() {
		return nil, OpFailed(fmt.Sprintf("pre-actor handle %q already promoted", pre.id), nil)
	}
	sys := pre.system

	a := &Actor[S]{
		id:           pre.id,
		mailbox:      pre.mailbox,
		handlers:     b.handlers,
		sysOverrides: b.sysOverrides,
		system:       sys,
		timers:       newTimerService(),
		init:         b.init,
	}

	sys.mu.Lock()
	entry := sys.actors[pre.id]
	entry.reserved = false
	entry.typeName = fmt.Sprintf("%T", *new(S))
	sys.order = append(sys.order, pre.id)
	sys.mu.Unlock()

	sys.heartbeat.register(pre.id, pre.mailbox)
	sys.emit(AddActor{ID: pre.id, TypeName: entry.typeName})

	go func() {
		defer func() {
			sys.heartbeat.unregister(pre.id)
			close(entry.done)
		}()
		a.run(context.Background(), entry.startAck)
	}()

	return &ActorHandle[M]{id: pre.id, mailbox: pre.mailbox}, nil
}

// Lookup resolves a previously spawned actor's id into a typed handle, for
// the "actor system as a directory" pattern used by RequestActorOf-style
// late binding.
func Lookup[M any](sys *ActorSystem, id ActorId) (*ActorHandle[M], bool) {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	e, ok := sys.actors[id]
	if !ok || e.reserved {
		return nil, false
	}
	return &ActorHandle[M]{id: id, mailbox: e.mailbox}, true
}

// LookupDyn is Lookup's object-safe counterpart.
func LookupDyn(sys *ActorSystem, id ActorId) (DynMsgReceiver, bool) {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	e, ok := sys.actors[id]
	if !ok || e.reserved {
		return nil, false
	}
	return dynReceiverAdapter{id: id, mailbox: e.mailbox}, true
}

// StartAll sends Start to every spawned actor in spawn order and waits for
// each to ack, failing fast on the first error or on ctx expiry.
func (sys *ActorSystem) StartAll(ctx context.Context) error {
	entries := sys.snapshotOrder()

	for _, e := range entries {
		if err := e.mailbox.TrySendSys(Start{}); err != nil {
			sys.emit(NoStartActor{ID: e.id, Cause: err})
			return OpFailed(fmt.Sprintf("start %q", e.id), err)
		}
	}
	for _, e := range entries {
		select {
		case err := <-e.startAck:
			if err != nil {
				sys.emit(NoStartActor{ID: e.id, Cause: err})
				return OpFailed(fmt.Sprintf("start %q", e.id), err)
			}
		case <-ctx.Done():
			sys.emit(NoStartActor{ID: e.id, Cause: ErrTimedOut})
			return ErrTimedOut
		}
	}
	sys.emit(ActorsStarted{})
	return nil
}

// TimeoutStartAll is StartAll with a bounded wait, the Go analogue of
// odin_actor::ActorSystem::timeout_start_all.
func (sys *ActorSystem) TimeoutStartAll(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return sys.StartAll(ctx)
}

// Terminate sends Terminate to a single actor by id.
func (sys *ActorSystem) Terminate(id ActorId) error {
	sys.mu.RLock()
	e, ok := sys.actors[id]
	sys.mu.RUnlock()
	if !ok || e.reserved {
		return ErrNoSuchActor
	}
	return e.mailbox.TrySendSys(Terminate{})
}

// TerminateAll sends Terminate to every actor in reverse spawn order and
// waits for every receive loop to exit.
func (sys *ActorSystem) TerminateAll(ctx context.Context) error {
	entries := sys.snapshotOrder()

	for i := len(entries) - 1; i >= 0; i-- {
		_ = entries[i].mailbox.TrySendSys(Terminate{})
	}
	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-entries[i].done:
		case <-ctx.Done():
			sys.emit(NoTerminateActor{ID: entries[i].id})
			return ErrTimedOut
		}
	}

	sys.heartbeat.stop()
	sys.stopOnce.Do(func() { close(sys.stopCh) })
	sys.emit(ActorsTerminated{})
	return nil
}

// TimeoutTerminateAll is TerminateAll with a bounded wait.
func (sys *ActorSystem) TimeoutTerminateAll(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return sys.TerminateAll(ctx)
}

func (sys *ActorSystem) snapshotOrder() []*actorEntry {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	out := make([]*actorEntry, 0, len(sys.order))
	for _, id := range sys.order {
		if e, ok := sys.actors[id]; ok && !e.reserved {
			out = append(out, e)
		}
	}
	return out
}
