package team

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/teams/application/commands"
)

var createOwner string

var createCmd = &cobra.Command{
	Use:   "create [organization-id] [name]",
	Short: "Create a team in an organization",
	Long: `Create a team. The owner becomes its first member and the member
cap is taken from the organization's plan.

Examples:
  arena team create 6f1c... "Closers"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		orgID, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}
		ownerID := a.CurrentUserID
		if createOwner != "" {
			if ownerID, err = cli.ParseID("owner id", createOwner); err != nil {
				return err
			}
		}

		res, err := a.CreateTeamHandler.Handle(cmd.Context(), commands.CreateTeamCommand{
			OrganizationID: orgID,
			Name:           args[1],
			OwnerID:        ownerID,
		})
		if err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)
		printTeam(cmd, "created", res.Value)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createOwner, "owner", "", "owner user id (defaults to the current user)")
}
