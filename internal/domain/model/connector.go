package model

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/odin-fire/odin-go/internal/domain/event"
)

// Connector is the interface registry.Cell uses to fan an event out to one
// attached transport session, decoupling the cell's actor loop from the
// concrete transport. internal/server/ws is the only transport in this
// module that creates Connectors; the gRPC server hosts no session streams.
type Connector interface {
	GetID() uuid.UUID
	GetSubjectID() string
	Send(ev event.Eventer, timeout time.Duration) bool
	Recv() <-chan event.Eventer
	Close()
}

// ConnectMetadata carries transport-layer context, surfaced to analytics and
// the TUI dashboard without leaking into the Connector interface itself.
type ConnectMetadata struct {
	Transport string // "ws" or "grpc"
	RemoteIP  string
	UserAgent string
}

var _ Connector = (*sessionConnector)(nil)

type sessionConnector struct {
	id        uuid.UUID
	subjectID string
	metadata  ConnectMetadata
	createdAt time.Time

	ctx      context.Context
	cancelFn context.CancelFunc

	sendCh    chan event.Eventer
	closeOnce sync.Once

	droppedCount atomic.Uint64
}

// NewConnector opens a new session for subjectID (an aircraft ICAO, tile ID,
// device ID, or dashboard client) with a bufferSize-deep outbound queue.
func NewConnector(ctx context.Context, subjectID string, metadata ConnectMetadata, bufferSize int) Connector {
	childCtx, cancel := context.WithCancel(ctx)
	return &sessionConnector{
		id:        uuid.New(),
		subjectID: subjectID,
		metadata:  metadata,
		createdAt: time.Now(),
		ctx:       childCtx,
		cancelFn:  cancel,
		sendCh:    make(chan event.Eventer, bufferSize),
	}
}

func (c *sessionConnector) GetID() uuid.UUID     { return c.id }
func (c *sessionConnector) GetSubjectID() string { return c.subjectID }

// Send enqueues ev, waiting up to timeout for room before falling back to
// priority-based eviction of an already-queued lower-priority event.
func (c *sessionConnector) Send(ev event.Eventer, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- ev:
		return true
	case <-ctx.Done():
		return c.handleBackpressure(ev, timeout)
	}
}

func (c *sessionConnector) handleBackpressure(ev event.Eventer, timeout time.Duration) bool {
	if ev.GetPriority() <= event.PriorityLow {
		c.droppedCount.Add(1)
		return false
	}

	select {
	case old := <-c.sendCh:
		if old.GetPriority() < ev.GetPriority() {
			c.sendCh <- ev
			return true
		}
		select {
		case c.sendCh <- old:
		default:
		}
	case <-time.After(timeout):
	}

	c.droppedCount.Add(1)
	return false
}

func (c *sessionConnector) Recv() <-chan event.Eventer { return c.sendCh }

func (c *sessionConnector) Close() {
	c.closeOnce.Do(func() {
		c.cancelFn()
		close(c.sendCh)
	})
}
