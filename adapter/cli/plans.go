package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

var plansJSON bool

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plans in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		plans := a.Policy.Catalog().Plans()
		if plansJSON {
			return PrintJSON(cmd.OutOrStdout(), plans)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s %-14s %8s %6s %8s  %s\n", "ID", "NAME", "MEMBERS", "TEAMS", "STORAGE", "FEATURES")
		for _, p := range plans {
			fmt.Fprintf(out, "%-10s %-14s %8s %6s %8s  %s\n",
				p.ID, p.Name,
				FormatLimit(p.Limit(billing.MetricTeamMembers)),
				FormatLimit(p.Limit(billing.MetricTeams)),
				FormatLimit(p.Limit(billing.MetricStorageGB)),
				strings.Join(p.Features, ","),
			)
		}
		return nil
	},
}

// FormatLimit renders a plan limit, spelling out unlimited.
func FormatLimit(limit int) string {
	if limit == billing.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(limit)
}

func init() {
	plansCmd.Flags().BoolVar(&plansJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(plansCmd)
}
