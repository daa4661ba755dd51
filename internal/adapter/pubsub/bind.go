package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/registry"
)

// DomainHandler is the business-logic signature Bind wraps into a watermill
// NoPublishHandlerFunc.
type DomainHandler[T any] func(ctx context.Context, subjectID string, payload *T) (event.Eventer, error)

// EventHandler bridges watermill messages arriving from sibling ODIN nodes
// back into this node's registry.Hub.
type EventHandler struct {
	hub        *registry.Hub
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewEventHandler(hub *registry.Hub, dispatcher Dispatcher, logger *slog.Logger) *EventHandler {
	return &EventHandler{hub: hub, dispatcher: dispatcher, logger: logger}
}

// Bind decodes msg's payload into T, runs fn, and fans the resulting event
// out locally (and, if Exportable, back onto the bus for the next hop).
// A message with no locally-connected subject is ACKed without running fn
// at all — this is the cross-node locality filter: each node's queue
// receives every event, but only acts on subjects attached to it.
func Bind[T any](h *EventHandler, fn DomainHandler[T]) message.NoPublishHandlerFunc {
	return func(msg *message.Message) (err error) {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("pubsub handler panic", "err", r, "stack", string(debug.Stack()), "msg_id", msg.UUID)
			}
		}()

		subjectID := msg.Metadata.Get("x-subject-id")
		if subjectID == "" {
			h.logger.Warn("pubsub handler: message missing x-subject-id", "msg_id", msg.UUID)
			return nil // ACK: malformed routing metadata is terminal, not retryable
		}

		if !h.hub.IsConnected(subjectID) {
			return nil // ACK: another node owns this subject's sessions
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			h.logger.Error("pubsub handler: decode failed", "err", err, "msg_id", msg.UUID)
			return nil // ACK: poison-pill protection
		}

		ev, err := fn(msg.Context(), subjectID, payload)
		if err != nil {
			return err // NACK: triggers watermill's retry middleware
		}
		if ev == nil {
			return nil
		}

		h.hub.Broadcast(ev)

		if _, exportable := ev.(event.Exportable); exportable {
			if err := h.dispatcher.Publish(msg.Context(), ev); err != nil {
				return fmt.Errorf("pubsub handler: re-publish: %w", err)
			}
		}
		return nil
	}
}
