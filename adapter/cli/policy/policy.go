package policy

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	billingApp "github.com/felixgeelhaar/arena/internal/billing/application"
	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
)

var policyJSON bool

// Cmd is the policy command group.
var Cmd = &cobra.Command{
	Use:   "policy",
	Short: "Ask what an organization's plan allows",
}

var accessCmd = &cobra.Command{
	Use:   "access [organization-id] [feature]",
	Short: "Check whether an organization has a feature",
	Long: `Check whether the organization's current plan includes a feature.

Examples:
  arena policy access 6f1c... competitions`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		orgID, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}

		d, err := a.Policy.HasAccess(cmd.Context(), args[1], orgID)
		if err != nil {
			return err
		}
		return printDecision(cmd, d)
	},
}

var limitCmd = &cobra.Command{
	Use:   "limit [organization-id] [metric] [value]",
	Short: "Check a value against an organization's plan limit",
	Long: `Check whether value stays within the plan limit for metric. Known
metrics are team_members, teams and storage_gb.

Examples:
  arena policy limit 6f1c... team_members 12`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		orgID, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}
		value, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[2], err)
		}

		d, err := a.Policy.IsWithinLimits(cmd.Context(), billing.Metric(args[1]), value, orgID)
		if err != nil {
			return err
		}
		return printDecision(cmd, d)
	},
}

func printDecision(cmd *cobra.Command, d billingApp.AccessDecision) error {
	if policyJSON {
		return cli.PrintJSON(cmd.OutOrStdout(), d)
	}
	out := cmd.OutOrStdout()
	verdict := "denied"
	if d.Allowed {
		verdict = "allowed"
	}
	fmt.Fprintf(out, "%s (plan: %s)\n", verdict, d.PlanID)
	if d.Metric != "" {
		fmt.Fprintf(out, "  %s: %d of %s\n", d.Metric, d.Value, cli.FormatLimit(d.Limit))
	}
	if d.Reason != "" {
		fmt.Fprintf(out, "  reason: %s\n", d.Reason)
	}
	return nil
}

func init() {
	Cmd.PersistentFlags().BoolVar(&policyJSON, "json", false, "print as JSON")
	Cmd.AddCommand(accessCmd)
	Cmd.AddCommand(limitCmd)
}
