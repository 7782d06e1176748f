package readmodel

import (
	"context"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	organizations "github.com/felixgeelhaar/arena/internal/organizations/domain"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
)

// SyncSubscriber invalidates the views touched by each domain event so
// the refresher reloads them.
type SyncSubscriber struct {
	cache *Cache
}

func NewSyncSubscriber(cache *Cache) *SyncSubscriber {
	return &SyncSubscriber{cache: cache}
}

func (s *SyncSubscriber) Name() string         { return "readmodel-sync" }
func (s *SyncSubscriber) EventTypes() []string { return []string{eventbus.AllEvents} }

func (s *SyncSubscriber) Handle(_ context.Context, event sharedDomain.DomainEvent) error {
	for _, key := range AffectedKeys(event) {
		s.cache.Invalidate(key)
	}
	return nil
}

// AffectedKeys lists the views an event changes.
func AffectedKeys(event sharedDomain.DomainEvent) []Key {
	keys := []Key{{AggregateType: event.AggregateType(), AggregateID: event.AggregateID()}}

	switch e := event.(type) {
	case *billing.SubscriptionCreated:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *billing.SubscriptionStatusChanged:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *billing.SubscriptionPlanChanged:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *billing.SubscriptionCancelled:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *billing.SubscriptionCancellationScheduled:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *billing.SubscriptionCancellationRevoked:
		keys = append(keys, OrganizationSubscriptionKey(e.OrganizationID))
	case *teams.TeamCreated:
		keys = append(keys, OrganizationTeamsKey(e.OrganizationID))
	case *teams.TeamMemberAdded:
		keys = append(keys, OrganizationTeamsKey(e.OrganizationID))
	case *teams.TeamMemberRemoved:
		keys = append(keys, OrganizationTeamsKey(e.OrganizationID))
	case *teams.TeamMemberLimitChanged:
		keys = append(keys, OrganizationTeamsKey(e.OrganizationID))
	case *organizations.OrganizationCreated:
		keys = append(keys, OrganizationTeamsKey(e.AggregateID()))
	}
	return keys
}
