package event

import (
	"time"

	"github.com/google/uuid"
)

var _ Eventer = (*Envelope)(nil)

// Envelope is the single concrete Eventer implementation used by every
// ingester actor: ADS-B position updates, FIRMS hotspots, HRRR cycle
// readiness, and sensor readings all flow through the registry wrapped in
// one of these, keyed by subject (aircraft ICAO, tile ID, model name, or
// device ID) rather than by a chat user ID.
type Envelope struct {
	id         string
	traceID    string
	subjectID  string
	kind       Kind
	priority   Priority
	occurredAt int64
	payload    any
	cached     any
	routingKey string
}

func NewEnvelope(subjectID string, kind Kind, priority Priority, payload any) *Envelope {
	return &Envelope{
		id:         uuid.NewString(),
		traceID:    uuid.NewString(),
		subjectID:  subjectID,
		kind:       kind,
		priority:   priority,
		occurredAt: time.Now().UnixMilli(),
		payload:    payload,
	}
}

// WithRoutingKey marks the envelope Exportable with the given AMQP routing
// key, so internal/adapter/pubsub re-publishes it after local delivery.
func (e *Envelope) WithRoutingKey(key string) *Envelope {
	e.routingKey = key
	return e
}

func (e *Envelope) GetID() string           { return e.id }
func (e *Envelope) GetTraceID() string      { return e.traceID }
func (e *Envelope) GetKind() Kind           { return e.kind }
func (e *Envelope) GetSubjectID() string    { return e.subjectID }
func (e *Envelope) GetPriority() Priority   { return e.priority }
func (e *Envelope) GetOccurredAt() int64    { return e.occurredAt }
func (e *Envelope) GetPayload() any         { return e.payload }
func (e *Envelope) GetCached() any          { return e.cached }
func (e *Envelope) SetCached(v any)         { e.cached = v }
func (e *Envelope) GetRoutingKey() string   { return e.routingKey }
