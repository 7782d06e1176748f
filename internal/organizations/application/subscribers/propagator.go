// Package subscribers keeps organizations and teams in step with their
// subscription by reacting to billing events.
package subscribers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/google/uuid"
)

// PropagationResult describes one limit propagation.
type PropagationResult struct {
	MaxMembers int
	Teams      []*teams.Team
	Updated    int
}

// LimitPropagator applies an organization's plan member limit to every one
// of its teams.
type LimitPropagator struct {
	catalog   *billing.Catalog
	teams     teams.TeamRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
	logger    *slog.Logger
}

// NewLimitPropagator creates a LimitPropagator.
func NewLimitPropagator(
	catalog *billing.Catalog,
	teamRepo teams.TeamRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
	logger *slog.Logger,
) *LimitPropagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LimitPropagator{catalog: catalog, teams: teamRepo, uow: uow, publisher: publisher, logger: logger}
}

// Propagate sets every team's member cap to planID's team_members limit.
// The limit is absolute, so running it twice has no further effect. Teams
// already at the limit are not written. A team that fails to save does not
// stop the others; all failures are joined into the returned error.
func (p *LimitPropagator) Propagate(ctx context.Context, organizationID uuid.UUID, planID billing.PlanID) (PropagationResult, error) {
	var result PropagationResult

	limit, err := p.catalog.Limit(planID, billing.MetricTeamMembers)
	if err != nil {
		return result, err
	}
	result.MaxMembers = limit

	list, err := p.teams.FindByOrganization(ctx, organizationID)
	if err != nil {
		return result, fmt.Errorf("load teams of %s: %w", organizationID, err)
	}
	result.Teams = list

	var errs []error
	for _, team := range list {
		changed, err := team.ApplyMemberLimit(limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("team %s: %w", team.ID(), err))
			continue
		}
		if !changed {
			continue
		}

		err = sharedApplication.WithUnitOfWork(ctx, p.uow, func(txCtx context.Context) error {
			return p.teams.Save(txCtx, team)
		})
		if err != nil {
			team.ClearPendingEvents()
			p.logger.Error("team limit propagation failed",
				"organization_id", organizationID,
				"team_id", team.ID(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("team %s: %w", team.ID(), err))
			continue
		}
		result.Updated++

		if err := sharedApplication.FlushEvents(ctx, p.publisher, team); err != nil {
			errs = append(errs, err)
		}
	}

	p.logger.Debug("team limits propagated",
		"organization_id", organizationID,
		"plan_id", planID,
		"max_members", limit,
		"teams", len(list),
		"updated", result.Updated,
	)
	return result, errors.Join(errs...)
}
