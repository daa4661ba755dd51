/*
Package registry provides per-subject event fan-out on top of internal/actor.

Every connected subject (an aircraft, a wildfire tile, a dashboard client) is
backed by a real actor.Actor: its mailbox absorbs bursts from the ingester
actors, and slow transport sessions never block the producers feeding it.
This replaces the teacher's raw goroutine-per-Cell with the pre-actor-handle
cycle-breaking actor core built out in internal/actor, demonstrating the core
end-to-end rather than reinventing its own concurrency primitives.
*/
package registry

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// Celler is the internal API for subject-specific delivery units.
type Celler interface {
	Push(ev event.Eventer) bool
	Attach(conn model.Connector)
	Detach(connID uuid.UUID) bool
	IsIdle(timeout time.Duration) bool
	Stop()
}

type pushEvent struct{ Ev event.Eventer }
type attachConn struct{ Conn model.Connector }
type detachConn struct{ ID uuid.UUID }
type closeAllSessions struct{}

type cellState struct {
	sessions map[uuid.UUID]model.Connector
}

// Cell implements Celler as a thin wrapper around one spawned actor.
type Cell struct {
	subjectID        string
	handle           *actor.ActorHandle[pushEvent]
	lastActivityUnix atomic.Int64
	sessionCount     atomic.Int32
}

// NewCell spawns a fresh cell actor on sys, sized for bufferSize in-flight
// events, and sends it Start; it returns without waiting for the Start ack.
func NewCell(sys *actor.ActorSystem, subjectID string, bufferSize int) (*Cell, error) {
	b := actor.NewActorBuilder[cellState]("cell:"+subjectID, bufferSize, func() (*cellState, error) {
		return &cellState{sessions: make(map[uuid.UUID]model.Connector)}, nil
	})

	actor.On(b, func(_ *actor.Actor[cellState], s *cellState, m pushEvent) actor.ReceiveAction {
		deliver(s, m.Ev)
		return actor.Continue
	})
	actor.On(b, func(_ *actor.Actor[cellState], s *cellState, m attachConn) actor.ReceiveAction {
		s.sessions[m.Conn.GetID()] = m.Conn
		return actor.Continue
	})
	actor.On(b, func(_ *actor.Actor[cellState], s *cellState, m detachConn) actor.ReceiveAction {
		delete(s.sessions, m.ID)
		return actor.Continue
	})
	actor.On(b, func(_ *actor.Actor[cellState], s *cellState, _ closeAllSessions) actor.ReceiveAction {
		for id, conn := range s.sessions {
			conn.Close()
			delete(s.sessions, id)
		}
		return actor.Continue
	})

	h, err := actor.SpawnActor[cellState, pushEvent](sys, b)
	if err != nil {
		return nil, err
	}
	// Cells are spawned one at a time, long after the system's initial
	// StartAll; sending Start directly to this actor (rather than
	// re-running StartAll, which would re-signal every already-running
	// actor and block forever on their already-drained startAck channels)
	// is enough to satisfy the Start-before-domain-message invariant, since
	// awaitStart only drains the system channel and never touches the
	// domain channel any Push/Attach/Detach lands on in the meantime.
	if err := h.SendStartSys(); err != nil {
		return nil, err
	}

	c := &Cell{subjectID: subjectID, handle: h}
	c.touch()
	return c, nil
}

func deliver(s *cellState, ev event.Eventer) {
	for _, conn := range s.sessions {
		conn.Send(ev, 250*time.Millisecond)
	}
}

func (c *Cell) touch() { c.lastActivityUnix.Store(time.Now().Unix()) }

// Push enqueues ev for fan-out; false means the mailbox was saturated and
// the event was dropped (spec's bounded-mailbox backpressure, not an error).
func (c *Cell) Push(ev event.Eventer) bool {
	c.touch()
	return c.handle.TrySendMsg(pushEvent{Ev: ev}) == nil
}

func (c *Cell) Attach(conn model.Connector) {
	c.touch()
	c.sessionCount.Add(1)
	_ = actor.As[attachConn](c.handle).TrySendMsg(attachConn{Conn: conn})
}

func (c *Cell) Detach(connID uuid.UUID) bool {
	c.touch()
	remaining := c.sessionCount.Add(-1)
	_ = actor.As[detachConn](c.handle).TrySendMsg(detachConn{ID: connID})
	return remaining <= 0
}

func (c *Cell) IsIdle(timeout time.Duration) bool {
	if c.sessionCount.Load() > 0 {
		return false
	}
	last := time.Unix(c.lastActivityUnix.Load(), 0)
	return time.Since(last) > timeout
}

// Stop closes every attached session and tears down the actor. Reclamation
// races with any in-flight Push are accepted per spec's "no exactly-once
// delivery" non-goal — a cell slated for eviction has already been idle.
func (c *Cell) Stop() {
	_ = actor.As[closeAllSessions](c.handle).TrySendMsg(closeAllSessions{})
	c.handle.SendTerminateSys()
}
