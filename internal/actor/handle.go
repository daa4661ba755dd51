package actor

import (
	"context"
	"sync/atomic"
	"time"
)

// ActorId is a human-readable, immutable actor name, unique within a
// running ActorSystem (data model §3).
type ActorId string

func (id ActorId) String() string { return string(id) }

// Identifiable is implemented by everything that carries an ActorId.
type Identifiable interface {
	ID() ActorId
}

// MsgReceiver is the generic, monomorphized "I accept T" capability.
// Producer code captures a MsgReceiver[T] — never a concrete ActorHandle[M]
// — so it never needs to know the consumer's full message set (spec §4.4).
type MsgReceiver[T any] interface {
	Identifiable
	TryMsgReceiver[T]
	SendMsg(ctx context.Context, msg T) error
	TimeoutSendMsg(ctx context.Context, msg T, d time.Duration) error
}

// TryMsgReceiver is the non-suspending subset of MsgReceiver.
type TryMsgReceiver[T any] interface {
	Identifiable
	TrySendMsg(msg T) error
}

// DynMsgReceiver is the type-erased, object-safe counterpart used when a
// heterogeneous collection of receivers (different T per entry) must be
// stored together, e.g. inside an ActionList or shipped as a dynamic action
// inside a message (spec §4.6).
type DynMsgReceiver interface {
	Identifiable
	TrySendMsg(msg any) error
	SendMsg(ctx context.Context, msg any) error
	TimeoutSendMsg(ctx context.Context, msg any, d time.Duration) error
}

// ActorHandle is a cheap, cloneable send-capability for one actor's
// message-set type M. It never exposes actor state.
type ActorHandle[M any] struct {
	id      ActorId
	mailbox *Mailbox[any]
}

// ID returns the handle's actor id.
func (h *ActorHandle[M]) ID() ActorId { return h.id }

// Clone returns a cheap copy of the handle. Handles are safe to share
// across goroutines; Clone exists for symmetry with the source API and to
// make call sites read the same as "hself.clone()".
func (h *ActorHandle[M]) Clone() *ActorHandle[M] {
	cp := *h
	return &cp
}

// SendMsg suspends until space is available or the mailbox closes.
func (h *ActorHandle[M]) SendMsg(ctx context.Context, msg M) error {
	return h.mailbox.Send(ctx, msg)
}

// TrySendMsg never suspends.
func (h *ActorHandle[M]) TrySendMsg(msg M) error {
	return h.mailbox.TrySend(msg)
}

// TimeoutSendMsg fails with ErrTimedOut if space is not granted within d.
func (h *ActorHandle[M]) TimeoutSendMsg(ctx context.Context, msg M, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return h.mailbox.Send(ctx, msg)
}

// RetrySendMsg repeatedly TrySendMsg's, sleeping backoff between attempts.
func (h *ActorHandle[M]) RetrySendMsg(msg M, maxAttempts int, backoff time.Duration, schedule ...time.Duration) error {
	return h.mailbox.RetrySend(msg, maxAttempts, backoff, schedule...)
}

// --- system message paths: always the non-blocking, system-priority side
// channel, so a saturated domain mailbox never delays control traffic.

func (h *ActorHandle[M]) sendSys(msg any) error { return h.mailbox.TrySendSys(msg) }

func (h *ActorHandle[M]) SendStartSys() error     { return h.sendSys(Start{}) }
func (h *ActorHandle[M]) SendPauseSys() error     { return h.sendSys(Pause{}) }
func (h *ActorHandle[M]) SendResumeSys() error    { return h.sendSys(Resume{}) }
func (h *ActorHandle[M]) SendTerminateSys() error { return h.sendSys(Terminate{}) }
func (h *ActorHandle[M]) SendTimerSys(id int64) error {
	return h.sendSys(Timer{ID: id})
}
func (h *ActorHandle[M]) SendExecSys(fn func()) error { return h.sendSys(Exec{Fn: fn}) }
func (h *ActorHandle[M]) SendPingSys(p Ping) error     { return h.sendSys(p) }

// As adapts an ActorHandle[M] into a MsgReceiver[T] for one message type T
// in M's message set. This is the mechanism by which "ActorHandle<M>
// implements MsgReceiver<T> for every T" is realized without Go union
// types: the adapter is a zero-state wrapper around the handle's mailbox.
func As[T any, M any](h *ActorHandle[M]) MsgReceiver[T] {
	return receiverAdapter[T]{id: h.id, mailbox: h.mailbox}
}

// AsDyn adapts an ActorHandle[M] into the object-safe DynMsgReceiver,
// for storage in heterogeneous subscriber lists.
func AsDyn[M any](h *ActorHandle[M]) DynMsgReceiver {
	return dynReceiverAdapter{id: h.id, mailbox: h.mailbox}
}

type receiverAdapter[T any] struct {
	id      ActorId
	mailbox *Mailbox[any]
}

func (r receiverAdapter[T]) ID() ActorId { return r.id }
func (r receiverAdapter[T]) TrySendMsg(msg T) error {
	return r.mailbox.TrySend(msg)
}
func (r receiverAdapter[T]) SendMsg(ctx context.Context, msg T) error {
	return r.mailbox.Send(ctx, msg)
}
func (r receiverAdapter[T]) TimeoutSendMsg(ctx context.Context, msg T, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.mailbox.Send(ctx, msg)
}

type dynReceiverAdapter struct {
	id      ActorId
	mailbox *Mailbox[any]
}

func (r dynReceiverAdapter) ID() ActorId { return r.id }
func (r dynReceiverAdapter) TrySendMsg(msg any) error {
	return r.mailbox.TrySend(msg)
}
func (r dynReceiverAdapter) SendMsg(ctx context.Context, msg any) error {
	return r.mailbox.Send(ctx, msg)
}
func (r dynReceiverAdapter) TimeoutSendMsg(ctx context.Context, msg any, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.mailbox.Send(ctx, msg)
}

// PreActorHandle reserves an actor id and its mailbox before the actor is
// spawned, so two actors that need each other's handles at construction
// time can both be wired using pre-handles and promoted later (spec §4.4,
// §9 "cycles in the actor graph"). Exactly one Spawn call may consume it.
type PreActorHandle[M any] struct {
	id        ActorId
	mailbox   *Mailbox[any]
	typeName  string
	promoted  atomic.Bool
	system    *ActorSystem
}

// ID returns the reserved actor id.
func (p *PreActorHandle[M]) ID() ActorId { return p.id }

// ToActorHandle produces a sender-side handle usable immediately, before
// the actor backing it is running. Safe to call repeatedly; every clone
// shares the same reserved mailbox.
func (p *PreActorHandle[M]) ToActorHandle() *ActorHandle[M] {
	return &ActorHandle[M]{id: p.id, mailbox: p.mailbox}
}

// tryPromote marks the pre-handle consumed. Returns false if already
// promoted (a second spawn attempt on the same pre-handle is a bug at the
// call site, not a recoverable race, since only one actor lifecycle should
// ever be tied to one reservation).
func (p *PreActorHandle[M]) tryPromote() bool {
	return p.promoted.CompareAndSwap(false, true)
}
