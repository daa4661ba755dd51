package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/odin-fire/odin-go/internal/domain/event"
)

// OutboundEvent is the wire shape internal/adapter/pubsub publishes to the
// cross-node AMQP exchange once a local Exportable event has been delivered.
type OutboundEvent struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	SubjectID  string     `json:"subject_id"`
	Kind       event.Kind `json:"kind"`
	Payload    any        `json:"payload"`
	Timestamp  int64      `json:"timestamp"`
}

func NewOutboundEvent(subjectID string, kind event.Kind, payload any) *OutboundEvent {
	return &OutboundEvent{
		ID:        uuid.NewString(),
		Source:    "odin",
		SubjectID: subjectID,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}
