package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port every aggregate repository satisfies.
// FindByID returns an error of kind NotFound when the aggregate is absent.
// Save returns an error of kind ConcurrencyConflict when the stored version
// no longer matches the aggregate's version.
type Repository[T AggregateRoot] interface {
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	Save(ctx context.Context, aggregate T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
