package actor

import (
	"sync/atomic"
	"time"
)

// The fixed set of system messages every actor accepts, ported from
// odin_actor/src/lib.rs's _Start_/_Pause_/_Resume_/_Terminate_/_Timer_/
// _Exec_/_Ping_ variants. Names drop the Rust underscore convention in
// favor of plain exported Go identifiers.

// Start is delivered exactly once, before any domain message.
type Start struct{}

// Terminate's handler must return Stop; the mailbox closes once accepted.
type Terminate struct{}

// Pause suspends domain-message processing until Resume.
type Pause struct{}

// Resume resumes domain-message processing after Pause.
type Resume struct{}

// Timer is produced by an actor's own timer sub-service.
type Timer struct {
	ID int64
}

// Exec runs an injected side effect on the actor's own goroutine, used for
// test hooks and cross-actor synchronization points.
type Exec struct {
	Fn func()
}

const (
	// MaxPingCycle is the largest cycle number the 24-bit field can hold.
	MaxPingCycle uint32 = 0xffffff
	// MaxPingResponseNanos is the largest elapsed time the 38-bit field can
	// hold (~4.6 minutes); larger values saturate rather than wrap.
	MaxPingResponseNanos uint64 = 0x3FFFFFFFFF
)

// Ping is the heartbeat probe. The actor loop answers it itself, on the
// actor's own goroutine, by storing the elapsed time into Response with a
// single relaxed atomic write; like Exec, it never reaches a user handler
// (see heartbeatService.runCycle for the sending side).
type Ping struct {
	Cycle    uint32
	Sent     time.Time
	Response *atomic.Uint64
}

// StoreResponse packs (cycle<<38 | min(elapsed_ns, max)) into Response.
func (p Ping) StoreResponse() {
	dt := time.Since(p.Sent).Nanoseconds()
	if dt < 0 {
		dt = 0
	}
	ns := uint64(dt)
	if ns > MaxPingResponseNanos {
		ns = MaxPingResponseNanos
	}
	packed := (uint64(p.Cycle) << 38) | ns
	p.Response.Store(packed)
}

// UnpackPingResponse reverses the bit-packing performed by StoreResponse.
func UnpackPingResponse(packed uint64) (cycle uint32, nanos uint64) {
	return uint32(packed >> 38), packed & MaxPingResponseNanos
}

// ReceiveAction is the directive a handler returns to the actor loop.
type ReceiveAction int

const (
	// Continue keeps the receive loop running.
	Continue ReceiveAction = iota
	// Stop ends the receive loop immediately.
	Stop
	// RequestTermination asks the actor system to send this actor a
	// Terminate message; the loop keeps running until that arrives.
	RequestTermination
)

func (a ReceiveAction) String() string {
	switch a {
	case Continue:
		return "Continue"
	case Stop:
		return "Stop"
	case RequestTermination:
		return "RequestTermination"
	default:
		return "Unknown"
	}
}

// defaultSysReceiveAction returns the fixed default directive for the seven
// system variants: Stop for Terminate, Continue for everything else. Start,
// Timer, Pause, and Resume may be overridden by a user handler; Terminate,
// Exec, and Ping may not (spec §4.2).
func defaultSysReceiveAction(msg any) (ReceiveAction, bool) {
	switch msg.(type) {
	case Start, Resume, Pause, Timer, Exec, Ping:
		return Continue, true
	case Terminate:
		return Stop, true
	default:
		return Continue, false
	}
}

// overridableSysMsg reports whether msg is one of the four system variants
// a user handler is allowed to intercept.
func overridableSysMsg(msg any) bool {
	switch msg.(type) {
	case Start, Timer, Pause, Resume:
		return true
	default:
		return false
	}
}

// fixedSysMsg reports whether msg is one of the three system variants whose
// handling can never be overridden by user code.
func fixedSysMsg(msg any) bool {
	switch msg.(type) {
	case Terminate, Exec, Ping:
		return true
	default:
		return false
	}
}
