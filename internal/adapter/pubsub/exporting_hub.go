package pubsub

import (
	"context"
	"log/slog"

	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
	"github.com/odin-fire/odin-go/internal/domain/registry"
)

// ExportingHub wraps a *registry.Hub (and itself satisfies registry.Hubber)
// so that every locally-delivered
// Exportable event is also re-published onto the cross-node bus, closing
// the loop between the registry's local fan-out and Dispatcher/Bind's
// cross-node fan-out.
type ExportingHub struct {
	*registry.Hub
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewExportingHub decorates hub with Dispatcher-backed cross-node export.
func NewExportingHub(hub *registry.Hub, dispatcher Dispatcher, logger *slog.Logger) *ExportingHub {
	return &ExportingHub{Hub: hub, dispatcher: dispatcher, logger: logger}
}

// Broadcast delivers ev to local sessions as usual, then re-publishes it to
// sibling nodes if it carries a routing key.
func (h *ExportingHub) Broadcast(ev event.Eventer) bool {
	delivered := h.Hub.Broadcast(ev)
	if _, ok := ev.(event.Exportable); ok {
		if err := h.dispatcher.Publish(context.Background(), ev); err != nil {
			h.logger.Warn("exporting hub: publish failed", "err", err)
		}
	}
	return delivered
}

var _ registry.Hubber = (*ExportingHub)(nil)

// deviceEventHandler builds the DomainHandler that Bind wraps for one
// event.Kind: it re-wraps the decoded wire model type T in an Envelope, which
// Bind then re-broadcasts locally once a message arrives from a sibling node.
func deviceEventHandler[T any](kind event.Kind, priority event.Priority) DomainHandler[T] {
	return func(_ context.Context, subjectID string, payload *T) (event.Eventer, error) {
		return event.NewEnvelope(subjectID, kind, priority, *payload), nil
	}
}

// RoutesFor builds the standard set of inbound routes every ODIN node
// subscribes to: one queue per event.Kind this system ingests.
func RoutesFor(h *EventHandler) []Route {
	return []Route{
		{Topic: "odin.events", Queue: "odin.position", Handler: Bind(h, deviceEventHandler[model.AircraftPosition](event.PositionUpdate, event.PriorityNormal))},
		{Topic: "odin.events", Queue: "odin.hotspot", Handler: Bind(h, deviceEventHandler[model.Hotspot](event.HotspotDetected, event.PriorityHigh))},
		{Topic: "odin.events", Queue: "odin.weather", Handler: Bind(h, deviceEventHandler[model.WeatherCycle](event.WeatherCycleReady, event.PriorityNormal))},
		{Topic: "odin.events", Queue: "odin.sensor", Handler: Bind(h, deviceEventHandler[model.SensorReading](event.SensorReading, event.PriorityLow))},
	}
}
