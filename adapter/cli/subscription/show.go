package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [organization-id]",
	Short: "Show an organization's current subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		orgID, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}

		v, err := a.View(cmd.Context(), readmodel.OrganizationSubscriptionKey(orgID))
		if err != nil {
			return err
		}
		s := v.(readmodel.SubscriptionView)
		if showJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), s)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Subscription: %s\n", s.ID)
		fmt.Fprintf(out, "  plan: %s\n", s.PlanID)
		fmt.Fprintf(out, "  status: %s\n", s.Status)
		fmt.Fprintf(out, "  started: %s\n", s.StartDate.Format("2006-01-02"))
		if s.EndDate != nil {
			label := "ended"
			if s.CancelAtPeriodEnd {
				label = "cancels on"
			}
			fmt.Fprintf(out, "  %s: %s\n", label, s.EndDate.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
}
