package application

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
)

// EventPublisher delivers domain events to subscribers. The returned error
// reports handler failures; it never means the events were not produced.
type EventPublisher interface {
	PublishAll(ctx context.Context, events []domain.DomainEvent) error
}

// FlushEvents publishes and clears the pending events of the given
// aggregates. Call it only after the unit of work that persisted them has
// committed. Events are stamped with metadata from ctx, when present.
func FlushEvents(ctx context.Context, publisher EventPublisher, aggregates ...domain.AggregateRoot) error {
	var events []domain.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.PendingEvents()...)
		agg.ClearPendingEvents()
	}
	if len(events) == 0 || publisher == nil {
		return nil
	}
	if md, ok := EventMetadataFromContext(ctx); ok {
		ApplyEventMetadata(events, md)
	}
	return publisher.PublishAll(ctx, events)
}

// CommandResult is what command handlers return on success. Propagation
// holds failures reported by downstream event handlers; the command itself
// has been committed regardless.
type CommandResult[T any] struct {
	Value       T
	Propagation error
}
