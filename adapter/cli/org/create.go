package org

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/organizations/application/commands"
)

var createOwner string

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an organization on the free plan",
	Long: `Create an organization. The owner defaults to the current user and
the organization starts on the free plan.

Examples:
  arena org create "Acme Sales"
  arena org create "Acme Sales" --owner 6f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ownerID := a.CurrentUserID
		if createOwner != "" {
			if ownerID, err = cli.ParseID("owner id", createOwner); err != nil {
				return err
			}
		}

		res, err := a.CreateOrganizationHandler.Handle(cmd.Context(), commands.CreateOrganizationCommand{
			Name:    args[0],
			OwnerID: ownerID,
		})
		if err != nil {
			return fmt.Errorf("failed to create organization: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)

		org, sub := res.Value.Organization, res.Value.Subscription
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Organization created: %s\n", org.ID())
		fmt.Fprintf(out, "  name: %s\n", org.Name())
		fmt.Fprintf(out, "  plan: %s\n", sub.PlanID())
		fmt.Fprintf(out, "  subscription: %s\n", sub.ID())
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createOwner, "owner", "", "owner user id (defaults to the current user)")
}
