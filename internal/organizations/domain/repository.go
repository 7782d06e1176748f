package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
)

// OrganizationRepository persists organizations with their subscription
// history.
type OrganizationRepository interface {
	sharedDomain.Repository[*Organization]
	List(ctx context.Context) ([]*Organization, error)
}
