package org

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

var renameCmd = &cobra.Command{
	Use:   "rename [organization-id] [name]",
	Short: "Rename an organization",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}

		rename := func(v readmodel.OrganizationView) readmodel.OrganizationView {
			v.Name = args[1]
			return v
		}
		view, err := readmodel.MutateView(cmd.Context(), a.ReadModel, readmodel.OrganizationKey(id), a.ClientID(), rename,
			func(ctx context.Context) (readmodel.OrganizationView, error) {
				res, err := a.RenameOrganizationHandler.Handle(ctx, commands.RenameOrganizationCommand{
					OrganizationID: id,
					Name:           args[1],
					ActorID:        a.CurrentUserID,
				})
				if err != nil {
					return readmodel.OrganizationView{}, err
				}
				cli.ReportPropagation(cmd, res.Propagation)
				return readmodel.NewOrganizationView(res.Value), nil
			})
		if err != nil {
			return fmt.Errorf("failed to rename organization: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Organization renamed: %s\n", view.Name)
		return nil
	},
}
