package commands

import (
	"context"
	"time"

	identity "github.com/felixgeelhaar/arena/internal/identity/domain"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/felixgeelhaar/arena/internal/teams/domain"
	"github.com/google/uuid"
)

// AddMemberCommand seats a user on a team.
type AddMemberCommand struct {
	TeamID  uuid.UUID
	UserID  uuid.UUID
	Role    domain.Role
	ActorID uuid.UUID
}

// RemoveMemberCommand takes a user off a team.
type RemoveMemberCommand struct {
	TeamID  uuid.UUID
	UserID  uuid.UUID
	ActorID uuid.UUID
}

// MembershipHandler handles AddMemberCommand and RemoveMemberCommand.
type MembershipHandler struct {
	teams     domain.TeamRepository
	users     identity.UserRepository
	uow       sharedApplication.UnitOfWork
	publisher sharedApplication.EventPublisher
	now       func() time.Time
}

// NewMembershipHandler creates a MembershipHandler.
func NewMembershipHandler(
	teams domain.TeamRepository,
	users identity.UserRepository,
	uow sharedApplication.UnitOfWork,
	publisher sharedApplication.EventPublisher,
) *MembershipHandler {
	return &MembershipHandler{teams: teams, users: users, uow: uow, publisher: publisher, now: time.Now}
}

// Add seats the user. It fails with ErrMemberLimitReached on a full team,
// ErrAlreadyMember for a duplicate and a not-found error for an unknown
// user.
func (h *MembershipHandler) Add(ctx context.Context, cmd AddMemberCommand) (sharedApplication.CommandResult[*domain.Team], error) {
	if _, err := h.users.FindByID(ctx, cmd.UserID); err != nil {
		return sharedApplication.CommandResult[*domain.Team]{}, err
	}
	return h.mutate(ctx, cmd.TeamID, cmd.ActorID, func(t *domain.Team) error {
		return t.AddMember(cmd.UserID, cmd.Role, h.now())
	})
}

// Remove takes the user off the team.
func (h *MembershipHandler) Remove(ctx context.Context, cmd RemoveMemberCommand) (sharedApplication.CommandResult[*domain.Team], error) {
	return h.mutate(ctx, cmd.TeamID, cmd.ActorID, func(t *domain.Team) error {
		return t.RemoveMember(cmd.UserID)
	})
}

func (h *MembershipHandler) mutate(ctx context.Context, teamID, actorID uuid.UUID, fn func(*domain.Team) error) (sharedApplication.CommandResult[*domain.Team], error) {
	var result sharedApplication.CommandResult[*domain.Team]

	var team *domain.Team
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var err error
		if team, err = h.teams.FindByID(txCtx, teamID); err != nil {
			return err
		}
		if err := fn(team); err != nil {
			return err
		}
		return h.teams.Save(txCtx, team)
	})
	if err != nil {
		return result, err
	}

	ctx = sharedApplication.WithEventMetadata(ctx, sharedApplication.NewEventMetadata(actorID))
	result.Value = team
	result.Propagation = sharedApplication.FlushEvents(ctx, h.publisher, team)
	return result, nil
}
