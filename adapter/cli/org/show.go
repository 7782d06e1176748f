package org

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

var showJSON bool

type organizationDetails struct {
	Organization readmodel.OrganizationView  `json:"organization"`
	Subscription *readmodel.SubscriptionView `json:"subscription,omitempty"`
	Teams        []readmodel.TeamView        `json:"teams"`
}

var showCmd = &cobra.Command{
	Use:   "show [organization-id]",
	Short: "Show an organization with its subscription and teams",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := cli.ParseID("organization id", args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		v, err := a.View(ctx, readmodel.OrganizationKey(id))
		if err != nil {
			return err
		}
		details := organizationDetails{Organization: v.(readmodel.OrganizationView)}

		if v, err := a.View(ctx, readmodel.OrganizationSubscriptionKey(id)); err == nil {
			sub := v.(readmodel.SubscriptionView)
			details.Subscription = &sub
		}
		v, err = a.View(ctx, readmodel.OrganizationTeamsKey(id))
		if err != nil {
			return err
		}
		details.Teams = v.([]readmodel.TeamView)

		if showJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), details)
		}

		out := cmd.OutOrStdout()
		o := details.Organization
		fmt.Fprintf(out, "%s (%s)\n", o.Name, o.ID)
		fmt.Fprintf(out, "  plan:   %s\n", o.PlanID)
		fmt.Fprintf(out, "  status: %s\n", o.Status)
		if s := details.Subscription; s != nil {
			fmt.Fprintf(out, "  subscription: %s [%s]\n", s.ID, s.Status)
			if s.CancelAtPeriodEnd && s.EndDate != nil {
				fmt.Fprintf(out, "    cancels on %s\n", s.EndDate.Format("2006-01-02"))
			}
		}
		fmt.Fprintf(out, "  teams: %d\n", len(details.Teams))
		for _, t := range details.Teams {
			fmt.Fprintf(out, "    %s  %s  %d/%s", t.ID, t.Name, t.MemberCount, cli.FormatLimit(t.MaxMembers))
			if t.ExcessMemberCount > 0 {
				fmt.Fprintf(out, "  (%d over limit)", t.ExcessMemberCount)
			}
			fmt.Fprintln(out)
		}
		if cli.Verbose() {
			fmt.Fprintln(out, "  history:")
			for _, h := range o.History {
				fmt.Fprintf(out, "    %s  %s/%s\n", h.ChangedAt.Format("2006-01-02 15:04"), h.PlanID, h.Status)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
}
