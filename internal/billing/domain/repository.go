package domain

import (
	"context"
	"time"

	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/google/uuid"
)

// SubscriptionRepository persists subscriptions.
type SubscriptionRepository interface {
	sharedDomain.Repository[*Subscription]
	// FindOpenByOrganization returns the organization's subscription that
	// is not CANCELED, or an error of kind NotFound.
	FindOpenByOrganization(ctx context.Context, organizationID uuid.UUID) (*Subscription, error)
	// FindDueCancellations returns subscriptions scheduled to cancel at or
	// before now.
	FindDueCancellations(ctx context.Context, now time.Time) ([]*Subscription, error)
}
