package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

var changePlanCmd = &cobra.Command{
	Use:   "change-plan [subscription-id] [plan]",
	Short: "Move a subscription to another plan",
	Long: `Move a subscription to another plan. Every team of the organization
is resized to the new plan's member limit; members are never removed.

Examples:
  arena subscription change-plan 9a0e... premium`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, id, err := appAndID(args[0])
		if err != nil {
			return err
		}

		res, err := a.ChangePlanHandler.Handle(cmd.Context(), commands.ChangePlanCommand{
			SubscriptionID: id,
			PlanID:         billing.PlanID(args[1]),
			ActorID:        a.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to change plan: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)
		printSubscription(cmd, "updated", res.Value)
		return nil
	},
}
