package ws

import (
	"encoding/json"

	"github.com/odin-fire/odin-go/internal/domain/event"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// marshalEvent maps a domain Eventer to the JSON shape WebSocket clients
// expect, grounded on the teacher's handler/marshaller/ws.WSEvent wrapper.
func marshalEvent(ev event.Eventer) ([]byte, error) {
	source := ""
	if exp, ok := ev.(event.Exportable); ok {
		source = exp.GetRoutingKey()
	}
	out := model.NewOutboundEvent(ev.GetSubjectID(), ev.GetKind(), ev.GetPayload())
	if source != "" {
		out.Source = source
	}
	return json.Marshal(out)
}
