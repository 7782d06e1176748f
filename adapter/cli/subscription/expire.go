package subscription

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/billing/application/commands"
)

var expireAt string

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Finalize scheduled cancellations that are due",
	Long: `Finalize every cancellation scheduled for the end of a period that
has passed. The worker runs this periodically.

Examples:
  arena subscription expire
  arena subscription expire --now 2026-01-01T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if expireAt != "" {
			if now, err = time.Parse(time.RFC3339, expireAt); err != nil {
				return fmt.Errorf("invalid --now (use RFC3339): %w", err)
			}
		}

		res, err := a.ExpireSubscriptionsHandler.Handle(cmd.Context(), commands.ExpireSubscriptionsCommand{Now: now})
		cli.ReportPropagation(cmd, res.Propagation)
		fmt.Fprintf(cmd.OutOrStdout(), "Expired: %d cancelled, %d failed\n", res.Cancelled, res.Failed)
		return err
	},
}

func init() {
	expireCmd.Flags().StringVar(&expireAt, "now", "", "evaluate as of this time (RFC3339)")
}
