package team

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/readmodel"
	"github.com/felixgeelhaar/arena/internal/teams/application/commands"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
)

var memberRole string

var addMemberCmd = &cobra.Command{
	Use:   "add-member [team-id] [user-id]",
	Short: "Add a user to a team",
	Long: `Add a user to a team. Fails when the team is at its plan's member
limit.

Examples:
  arena team add-member 3b7d... 6f1c... --role manager`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, teamID, userID, err := memberArgs(args)
		if err != nil {
			return err
		}
		role, err := teams.ParseRole(memberRole)
		if err != nil {
			return err
		}

		var team *teams.Team
		seat := func(v readmodel.TeamView) readmodel.TeamView {
			return v.WithMember(teams.Member{UserID: userID, Role: role, JoinedAt: time.Now().UTC()})
		}
		_, err = readmodel.MutateView(cmd.Context(), a.ReadModel, readmodel.TeamKey(teamID), a.ClientID(), seat,
			func(ctx context.Context) (readmodel.TeamView, error) {
				res, err := a.MembershipHandler.Add(ctx, commands.AddMemberCommand{
					TeamID:  teamID,
					UserID:  userID,
					Role:    role,
					ActorID: a.CurrentUserID,
				})
				if err != nil {
					return readmodel.TeamView{}, err
				}
				cli.ReportPropagation(cmd, res.Propagation)
				team = res.Value
				return readmodel.NewTeamView(team), nil
			})
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		printTeam(cmd, "updated", team)
		return nil
	},
}

var removeMemberCmd = &cobra.Command{
	Use:   "remove-member [team-id] [user-id]",
	Short: "Remove a user from a team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, teamID, userID, err := memberArgs(args)
		if err != nil {
			return err
		}

		var team *teams.Team
		unseat := func(v readmodel.TeamView) readmodel.TeamView { return v.WithoutMember(userID) }
		_, err = readmodel.MutateView(cmd.Context(), a.ReadModel, readmodel.TeamKey(teamID), a.ClientID(), unseat,
			func(ctx context.Context) (readmodel.TeamView, error) {
				res, err := a.MembershipHandler.Remove(ctx, commands.RemoveMemberCommand{
					TeamID:  teamID,
					UserID:  userID,
					ActorID: a.CurrentUserID,
				})
				if err != nil {
					return readmodel.TeamView{}, err
				}
				cli.ReportPropagation(cmd, res.Propagation)
				team = res.Value
				return readmodel.NewTeamView(team), nil
			})
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		printTeam(cmd, "updated", team)
		return nil
	},
}

func memberArgs(args []string) (*cli.App, uuid.UUID, uuid.UUID, error) {
	a, err := cli.RequireApp()
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	teamID, err := cli.ParseID("team id", args[0])
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	userID, err := cli.ParseID("user id", args[1])
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, err
	}
	return a, teamID, userID, nil
}

func init() {
	addMemberCmd.Flags().StringVar(&memberRole, "role", string(teams.RoleMember), "member role (owner, manager, member)")
}
