package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// Publisher ships serialized events to an external broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Envelope is the wire form of a domain event.
type Envelope struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateID   uuid.UUID            `json:"aggregate_id"`
	AggregateType string               `json:"aggregate_type"`
	EventType     string               `json:"event_type"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Metadata      domain.EventMetadata `json:"metadata"`
	Payload       json.RawMessage      `json:"payload"`
}

// Encode serializes event into an Envelope.
func Encode(event domain.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		OccurredAt:    event.OccurredAt(),
		Metadata:      event.Metadata(),
		Payload:       payload,
	})
}

// Mirror forwards every event on the bus to an external Publisher so other
// systems can observe domain activity. It does not take part in
// consistency. Failures are logged and reported like any handler failure.
type Mirror struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewMirror creates a mirror consumer.
func NewMirror(publisher Publisher, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{publisher: publisher, logger: logger}
}

func (m *Mirror) Name() string         { return "event-mirror" }
func (m *Mirror) EventTypes() []string { return []string{AllEvents} }

// Handle encodes and forwards event.
func (m *Mirror) Handle(ctx context.Context, event domain.DomainEvent) error {
	body, err := Encode(event)
	if err == nil {
		err = m.publisher.Publish(ctx, event.EventType(), body)
	}
	if err != nil {
		m.logger.WarnContext(ctx, "event mirror failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err,
		)
		return err
	}
	return nil
}

// NoopPublisher discards everything. Used when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that only logs.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
