package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the database and optional backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		if a.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		report := a.Health.Check(ctx)
		for _, name := range a.Health.Names() {
			result := report.Checks[name]
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-9s %s\n", name, result.Status, result.Message)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "overall: %s\n", report.Status)
		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
