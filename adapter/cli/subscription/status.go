package subscription

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [subscription-id] [status]",
	Short: "Change a subscription's status",
	Long: `Change a subscription's status. Valid statuses are active, paused,
past_due and canceled.

Examples:
  arena subscription status 9a0e... paused`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, id, err := appAndID(args[0])
		if err != nil {
			return err
		}
		status, err := billing.ParseStatus(args[1])
		if err != nil {
			return err
		}

		res, err := a.ChangeStatusHandler.Handle(cmd.Context(), commands.ChangeStatusCommand{
			SubscriptionID: id,
			Status:         status,
			ActorID:        a.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)
		printSubscription(cmd, "updated", res.Value)
		return nil
	},
}
