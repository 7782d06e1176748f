package application

import (
	"context"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

type metadataKey struct{}

// NewEventMetadata starts a new correlation chain for a user-issued command.
func NewEventMetadata(userID uuid.UUID) domain.EventMetadata {
	id := uuid.New()
	return domain.EventMetadata{
		CorrelationID: id,
		CausationID:   id,
		UserID:        userID,
	}
}

// CausedBy derives metadata for events emitted while handling event. The
// correlation id is carried over so a whole propagation chain can be traced.
func CausedBy(event domain.DomainEvent) domain.EventMetadata {
	parent := event.Metadata()
	correlation := parent.CorrelationID
	if correlation == uuid.Nil {
		correlation = event.EventID()
	}
	return domain.EventMetadata{
		CorrelationID: correlation,
		CausationID:   event.EventID(),
		UserID:        parent.UserID,
	}
}

// WithEventMetadata stores metadata on ctx for FlushEvents to stamp.
func WithEventMetadata(ctx context.Context, md domain.EventMetadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

// EventMetadataFromContext returns metadata stored on ctx, if any.
func EventMetadataFromContext(ctx context.Context) (domain.EventMetadata, bool) {
	md, ok := ctx.Value(metadataKey{}).(domain.EventMetadata)
	return md, ok
}

// ApplyEventMetadata sets metadata on all events that accept it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
