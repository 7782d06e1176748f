// Package commands holds the team use cases.
package commands

import (
	"context"
	"fmt"

	billingApplication "github.com/felixgeelhaar/arena/internal/billing/application"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	identity "github.com/felixgeelhaar/arena/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/google/uuid"
)

// CreateTeamCommand creates a team inside an organization.
type CreateTeamCommand struct {
	OrganizationID uuid.UUID
	Name           string
	OwnerID        uuid.UUID
}

// CreateTeamHandler handles CreateTeamCommand.
type CreateTeamHandler struct {
	teams     domain.TeamRepository
	users     identity.UserRepository
	policy    *billingApplication.PolicyService
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
}

// NewCreateTeamHandler creates a CreateTeamHandler.
func NewCreateTeamHandler(
	teams domain.TeamRepository,
	users identity.UserRepository,
	policy *billingApplication.PolicyService,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *CreateTeamHandler {
	return &CreateTeamHandler{teams: teams, users: users, policy: policy, uow: uow, publisher: publisher}
}

// Handle creates the team capped at the organization plan's member limit.
// It fails with ErrTeamLimitReached when the plan allows no more teams.
func (h *CreateTeamHandler) Handle(ctx context.Context, cmd CreateTeamCommand) (sharedApplication.CommandResult[*domain.Team], error) {
	var result sharedApplication.CommandResult[*domain.Team]

	if _, err := h.users.FindByID(ctx, cmd.OwnerID); err != nil {
		return result, err
	}

	var team *domain.Team
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.teams.FindByOrganization(txCtx, cmd.OrganizationID)
		if err != nil {
			return err
		}
		decision, err := h.policy.IsWithinLimits(txCtx, billing.MetricTeams, len(existing)+1, cmd.OrganizationID)
		if err != nil {
			return err
		}
		if !decision.Allowed {
			return fmt.Errorf("%w: %s", domain.ErrTeamLimitReached, decision.Reason)
		}

		maxMembers, err := h.policy.Catalog().Limit(decision.PlanID, billing.MetricTeamMembers)
		if err != nil {
			return err
		}
		if team, err = domain.NewTeam(cmd.OrganizationID, cmd.Name, maxMembers, cmd.OwnerID); err != nil {
			return err
		}
		return h.teams.Save(txCtx, team)
	})
	if err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(cmd.OwnerID))
	result.Value = team
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, team)
	return result, nil
}
