package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/odin-fire/odin-go/internal/actor"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// Hubber is the external API every ingester and transport handler uses to
// reach a subject's attached sessions.
type Hubber interface {
	Broadcast(ev event.Eventer) bool
	Register(subjectID string, conn model.Connector) error
	Unregister(subjectID string, connID uuid.UUID)
	IsConnected(subjectID string) bool
	Stats() model.RegistryStats
	Shutdown()
}

// Hub implements Hubber on top of one actor.ActorSystem: every subject gets
// its own Cell actor, looked up by a lock-free sync.Map keyed on subjectID.
type Hub struct {
	sys    *actor.ActorSystem
	logger *slog.Logger
	cells  sync.Map // string -> *Cell

	config    hubConfig
	startedAt time.Time
	stopCh    chan struct{}
}

type hubConfig struct {
	evictionInterval time.Duration
	idleTimeout      time.Duration
	mailboxSize      int
}

// NewHub starts the janitor eviction loop against sys, an already-running
// actor system (StartAll must have been called on it for any statically
// spawned actors; Cells themselves self-start, see NewCell).
func NewHub(sys *actor.ActorSystem, logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		sys:    sys,
		logger: logger,
		config: hubConfig{
			evictionInterval: time.Minute,
			idleTimeout:      5 * time.Minute,
			mailboxSize:      256,
		},
		startedAt: time.Now(),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.runEvictor()
	return h
}

func (h *Hub) IsConnected(subjectID string) bool {
	_, ok := h.cells.Load(subjectID)
	return ok
}

func (h *Hub) Broadcast(ev event.Eventer) bool {
	val, ok := h.cells.Load(ev.GetSubjectID())
	if !ok {
		return false
	}
	return val.(Celler).Push(ev)
}

// Register performs an idempotent registration of a new session: the first
// caller for a given subject spawns its Cell actor, later callers attach to
// the existing one.
func (h *Hub) Register(subjectID string, conn model.Connector) error {
	val, loaded := h.cells.Load(subjectID)
	if !loaded {
		cell, err := NewCell(h.sys, subjectID, h.config.mailboxSize)
		if err != nil {
			return err
		}
		actual, _ := h.cells.LoadOrStore(subjectID, cell)
		val = actual
		if val != cell {
			cell.Stop() // lost the race, another goroutine's cell won
		}
	}
	val.(Celler).Attach(conn)
	return nil
}

func (h *Hub) Unregister(subjectID string, connID uuid.UUID) {
	val, ok := h.cells.Load(subjectID)
	if !ok {
		return
	}
	val.(Celler).Detach(connID)
}

func (h *Hub) Stats() model.RegistryStats {
	total := 0
	h.cells.Range(func(_, _ any) bool { total++; return true })
	return model.RegistryStats{TotalSubjects: total, Uptime: time.Since(h.startedAt)}
}

func (h *Hub) runEvictor() {
	ticker := time.NewTicker(h.config.evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.performEviction()
		}
	}
}

func (h *Hub) performEviction() {
	reaped := 0
	h.cells.Range(func(key, value any) bool {
		if cell := value.(Celler); cell.IsIdle(h.config.idleTimeout) {
			cell.Stop()
			h.cells.Delete(key)
			reaped++
		}
		return true
	})
	if reaped > 0 {
		h.logger.Info("hub eviction complete", "reclaimed", reaped)
	}
}

func (h *Hub) Shutdown() {
	close(h.stopCh)
	h.cells.Range(func(key, value any) bool {
		value.(Celler).Stop()
		return true
	})
}
