package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is an immutable record of a state change on one aggregate.
// EventType doubles as the routing key on external transports.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	EventType() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata carries tracing identifiers across a propagation chain.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
	UserID        uuid.UUID `json:"user_id"`
}

// BaseEvent implements the envelope part of DomainEvent. Concrete events
// embed it and add their payload fields.
type BaseEvent struct {
	eventID       uuid.UUID
	aggregateID   uuid.UUID
	aggregateType string
	eventType     string
	occurredAt    time.Time
	metadata      EventMetadata
}

// NewBaseEvent stamps a new event envelope.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, eventType string) BaseEvent {
	return BaseEvent{
		eventID:       uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		eventType:     eventType,
		occurredAt:    time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.eventID }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.aggregateID }
func (e BaseEvent) AggregateType() string   { return e.aggregateType }
func (e BaseEvent) EventType() string       { return e.eventType }
func (e BaseEvent) OccurredAt() time.Time   { return e.occurredAt }
func (e BaseEvent) Metadata() EventMetadata { return e.metadata }

// SetMetadata attaches tracing metadata before the event is published.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.metadata = metadata
}
