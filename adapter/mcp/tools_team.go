package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/arena/internal/readmodel"
	sharedApplication "github.com/felixgeelhaar/arena/internal/shared/application"
	"github.com/felixgeelhaar/arena/internal/teams/application/commands"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
)

type teamCreateInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"required"`
	Name           string `json:"name" jsonschema:"required"`
	OwnerID        string `json:"owner_id,omitempty"`
}

type teamIDInput struct {
	TeamID string `json:"team_id" jsonschema:"required"`
}

type teamMemberInput struct {
	TeamID string `json:"team_id" jsonschema:"required"`
	UserID string `json:"user_id" jsonschema:"required"`
	Role   string `json:"role,omitempty"`
}

func registerTeamTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("team.create").
		Description("Create a team sized to the organization's plan").
		Handler(func(ctx context.Context, input teamCreateInput) (map[string]any, error) {
			if app.CreateTeamHandler == nil {
				return nil, errNoDatabase
			}
			orgID, err := parseUUID(input.OrganizationID)
			if err != nil {
				return nil, err
			}
			ownerID, err := parseOptionalUUID(input.OwnerID, app.CurrentUserID)
			if err != nil {
				return nil, err
			}
			res, err := app.CreateTeamHandler.Handle(ctx, commands.CreateTeamCommand{
				OrganizationID: orgID,
				Name:           input.Name,
				OwnerID:        ownerID,
			})
			if err != nil {
				return nil, err
			}
			return map[string]any{"team": readmodel.NewTeamView(res.Value), "warnings": warnings(res.Propagation)}, nil
		})

	srv.Tool("team.show").
		Description("Show a team, its member limit and members").
		Handler(func(ctx context.Context, input teamIDInput) (any, error) {
			id, err := parseUUID(input.TeamID)
			if err != nil {
				return nil, err
			}
			return view(ctx, deps, readmodel.TeamKey(id))
		})

	srv.Tool("team.add_member").
		Description("Add a user to a team").
		Handler(func(ctx context.Context, input teamMemberInput) (map[string]any, error) {
			if app.MembershipHandler == nil {
				return nil, errNoDatabase
			}
			teamID, userID, err := memberIDs(input)
			if err != nil {
				return nil, err
			}
			role, err := teams.ParseRole(input.Role)
			if err != nil {
				return nil, err
			}
			seat := func(v readmodel.TeamView) readmodel.TeamView {
				return v.WithMember(teams.Member{UserID: userID, Role: role, JoinedAt: time.Now().UTC()})
			}
			return mutateTeam(ctx, deps, teamID, seat, func(ctx context.Context) (sharedApplication.CommandResult[*teams.Team], error) {
				return app.MembershipHandler.Add(ctx, commands.AddMemberCommand{
					TeamID:  teamID,
					UserID:  userID,
					Role:    role,
					ActorID: app.CurrentUserID,
				})
			})
		})

	srv.Tool("team.remove_member").
		Description("Remove a user from a team").
		Handler(func(ctx context.Context, input teamMemberInput) (map[string]any, error) {
			if app.MembershipHandler == nil {
				return nil, errNoDatabase
			}
			teamID, userID, err := memberIDs(input)
			if err != nil {
				return nil, err
			}
			unseat := func(v readmodel.TeamView) readmodel.TeamView { return v.WithoutMember(userID) }
			return mutateTeam(ctx, deps, teamID, unseat, func(ctx context.Context) (sharedApplication.CommandResult[*teams.Team], error) {
				return app.MembershipHandler.Remove(ctx, commands.RemoveMemberCommand{
					TeamID:  teamID,
					UserID:  userID,
					ActorID: app.CurrentUserID,
				})
			})
		})

	return nil
}

// mutateTeam runs a membership write through the read model so this
// session sees apply's result until the write is confirmed or rolled back.
func mutateTeam(
	ctx context.Context,
	deps ToolDependencies,
	teamID uuid.UUID,
	apply func(readmodel.TeamView) readmodel.TeamView,
	write func(ctx context.Context) (sharedApplication.CommandResult[*teams.Team], error),
) (map[string]any, error) {
	if deps.App.ReadModel == nil {
		return nil, errNoDatabase
	}
	var propagation error
	team, err := readmodel.MutateView(ctx, deps.App.ReadModel, readmodel.TeamKey(teamID), deps.ClientID, apply,
		func(ctx context.Context) (readmodel.TeamView, error) {
			res, err := write(ctx)
			if err != nil {
				return readmodel.TeamView{}, err
			}
			propagation = res.Propagation
			return readmodel.NewTeamView(res.Value), nil
		})
	if err != nil {
		return nil, err
	}
	return map[string]any{"team": team, "warnings": warnings(propagation)}, nil
}

func memberIDs(input teamMemberInput) (uuid.UUID, uuid.UUID, error) {
	teamID, err := parseUUID(input.TeamID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := parseUUID(input.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return teamID, userID, nil
}
