package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// Dispatcher is the outgoing half of cross-node fan-out: any Exportable
// event broadcast locally through ExportingHub is also re-published here so
// sibling ODIN nodes (and their own subjects) see it.
type Dispatcher interface {
	Publish(ctx context.Context, ev event.Eventer) error
	Publisher() message.Publisher
}

type dispatcher struct {
	publisher message.Publisher
}

func NewDispatcher(pub message.Publisher) Dispatcher {
	return &dispatcher{publisher: pub}
}

// Publish marshals ev and publishes it under its Exportable routing key. A
// non-Exportable event (most ingester output) is a silent no-op, mirroring
// the "empty routing key skips the publish" contract on event.Exportable.
func (d *dispatcher) Publish(ctx context.Context, ev event.Eventer) error {
	if ev == nil {
		return fmt.Errorf("pubsub dispatcher: cannot publish nil event")
	}
	exp, ok := ev.(event.Exportable)
	if !ok || exp.GetRoutingKey() == "" {
		return nil
	}

	// Eventer implementations carry unexported fields (see event.Envelope);
	// re-wrap in the JSON-tagged OutboundEvent shape before marshaling
	// rather than marshal the interface value directly.
	wire := model.NewOutboundEvent(ev.GetSubjectID(), ev.GetKind(), ev.GetPayload())
	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("pubsub dispatcher: marshal: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := d.publisher.Publish(exp.GetRoutingKey(), msg); err != nil {
		return fmt.Errorf("pubsub dispatcher: publish to %s: %w", exp.GetRoutingKey(), err)
	}
	return nil
}

func (d *dispatcher) Publisher() message.Publisher { return d.publisher }
