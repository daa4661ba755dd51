package actor

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Duration constructors, ported from odin_actor/src/lib.rs so that callers
// read the same "secs(2)", "millis(300)" vocabulary as the original source.
func Days(n int64) time.Duration    { return time.Duration(n) * 24 * time.Hour }
func Hours(n int64) time.Duration   { return time.Duration(n) * time.Hour }
func Minutes(n int64) time.Duration { return time.Duration(n) * time.Minute }
func Secs(n int64) time.Duration    { return time.Duration(n) * time.Second }
func Millis(n int64) time.Duration  { return time.Duration(n) * time.Millisecond }
func Micros(n int64) time.Duration  { return time.Duration(n) * time.Microsecond }
func Nanos(n int64) time.Duration   { return time.Duration(n) }

// Sleep suspends the calling goroutine, honoring context cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Timeout runs fn and fails with ErrTimedOut if it does not complete within d.
func Timeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ErrTimedOut
	}
}

// YieldNow cooperatively yields the scheduler, mirroring the source's yield_now.
func YieldNow() {
	runtime.Gosched()
}

// JoinHandle is returned by Spawn and awaited for completion/error.
type JoinHandle struct {
	done chan struct{}
	err  error
}

func (h *JoinHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ErrTimedOut
	}
}

// Spawn runs fn on its own goroutine, the general-purpose "spawn" primitive
// from spec §6. Cancellation is cooperative: fn must observe ctx itself.
func Spawn(ctx context.Context, name string, fn func(ctx context.Context) error) *JoinHandle {
	h := &JoinHandle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = fn(ctx)
	}()
	return h
}

// BlockingHandle is returned by SpawnBlocking. It cannot be aborted, only
// cooperatively signaled via Cancel(); the backing goroutine inspects
// IsCancelled() itself.
type BlockingHandle struct {
	cancelled chan struct{}
	done      chan struct{}
	err       error
	closeOnce sync.Once
}

func (h *BlockingHandle) Cancel() {
	h.closeOnce.Do(func() { close(h.cancelled) })
}

func (h *BlockingHandle) IsCancelled() bool {
	select {
	case <-h.cancelled:
		return true
	default:
		return false
	}
}

func (h *BlockingHandle) Wait() error {
	<-h.done
	return h.err
}

// SpawnBlocking dedicates a goroutine to potentially-blocking work (file or
// network I/O that doesn't honor context cancellation). fn receives a
// cancelled() predicate it should poll cooperatively; SpawnBlocking never
// forcibly aborts the goroutine.
func SpawnBlocking(name string, fn func(cancelled func() bool) error) *BlockingHandle {
	h := &BlockingHandle{cancelled: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = fn(h.IsCancelled)
	}()
	return h
}
