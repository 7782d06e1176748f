package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// UserRepository persists users.
type UserRepository interface {
	sharedDomain.Repository[*User]
	FindByEmail(ctx context.Context, email Email) (*User, error)
	// FindByIDs returns the users that exist among ids, keyed by id.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*User, error)
}
