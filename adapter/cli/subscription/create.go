package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

var createPlan string

var createCmd = &cobra.Command{
	Use:   "create [organization-id]",
	Short: "Start a new subscription for an organization",
	Long: `Start a new subscription. An organization can only have one
subscription that is not canceled, so this is used to resubscribe after a
cancellation.

Examples:
  arena subscription create 6f1c... --plan standard`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		orgID, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}

		res, err := a.CreateSubscriptionHandler.Handle(cmd.Context(), commands.CreateSubscriptionCommand{
			OrganizationID: orgID,
			PlanID:         billing.PlanID(createPlan),
			ActorID:        a.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)
		printSubscription(cmd, "created", res.Value)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createPlan, "plan", "p", string(billing.FreePlan), "plan id")
}
