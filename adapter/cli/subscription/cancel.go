package subscription

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
)

var (
	cancelAtPeriodEnd bool
	cancelRevoke      bool
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [subscription-id]",
	Short: "Cancel a subscription",
	Long: `Cancel a subscription now, or at the end of the current period.
An immediate cancellation reverts the organization to the free plan and
notifies every team member. --revoke withdraws a cancellation scheduled
with --at-period-end.

Examples:
  arena subscription cancel 9a0e...
  arena subscription cancel 9a0e... --at-period-end
  arena subscription cancel 9a0e... --revoke`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cancelRevoke && cancelAtPeriodEnd {
			return errors.New("--revoke and --at-period-end are mutually exclusive")
		}
		a, id, err := appAndID(args[0])
		if err != nil {
			return err
		}

		if cancelRevoke {
			res, err := a.CancelSubscriptionHandler.Revoke(cmd.Context(), commands.RevokeCancellationCommand{
				SubscriptionID: id,
				ActorID:        a.CurrentUserID,
			})
			if err != nil {
				return fmt.Errorf("failed to revoke cancellation: %w", err)
			}
			cli.ReportPropagation(cmd, res.Propagation)
			printSubscription(cmd, "cancellation revoked", res.Value)
			return nil
		}

		res, err := a.CancelSubscriptionHandler.Handle(cmd.Context(), commands.CancelSubscriptionCommand{
			SubscriptionID: id,
			AtPeriodEnd:    cancelAtPeriodEnd,
			ActorID:        a.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)

		verb := "cancelled"
		if cancelAtPeriodEnd {
			verb = "scheduled for cancellation"
		}
		printSubscription(cmd, verb, res.Value)
		return nil
	},
}

func init() {
	cancelCmd.Flags().BoolVar(&cancelAtPeriodEnd, "at-period-end", false, "cancel when the current period ends")
	cancelCmd.Flags().BoolVar(&cancelRevoke, "revoke", false, "withdraw a scheduled cancellation")
}
