package subscription

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

// Cmd is the subscription command group.
var Cmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"sub"},
	Short:   "Manage organization subscriptions",
	Long: `Change plans and statuses of subscriptions. Every change propagates
to the organization and resizes its teams.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(changePlanCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(expireCmd)
	Cmd.AddCommand(showCmd)
}

func printSubscription(cmd *cobra.Command, verb string, s *billing.Subscription) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subscription %s: %s\n", verb, s.ID())
	fmt.Fprintf(out, "  organization: %s\n", s.OrganizationID())
	fmt.Fprintf(out, "  plan: %s\n", s.PlanID())
	fmt.Fprintf(out, "  status: %s\n", s.Status())
	if s.CancelAtPeriodEnd() && s.EndDate() != nil {
		fmt.Fprintf(out, "  cancels on: %s\n", s.EndDate().Format("2006-01-02"))
	}
}

func appAndID(arg string) (*cli.App, uuid.UUID, error) {
	a, err := cli.RequireApp()
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := cli.ParseID("subscription id", arg)
	return a, id, err
}
