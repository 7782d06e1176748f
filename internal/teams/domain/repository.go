package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// TeamRepository persists teams with their rosters.
type TeamRepository interface {
	sharedDomain.Repository[*Team]
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Team, error)
}
