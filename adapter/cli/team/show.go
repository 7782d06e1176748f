package team

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/readmodel"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [team-id]",
	Short: "Show a team and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}
		id, err := cli.ParseID("team id", args[0])
		if err != nil {
			return err
		}

		v, err := a.View(cmd.Context(), readmodel.TeamKey(id))
		if err != nil {
			return err
		}
		t := v.(readmodel.TeamView)
		if showJSON {
			return cli.PrintJSON(cmd.OutOrStdout(), t)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", t.Name, t.ID)
		fmt.Fprintf(out, "  members: %d/%s\n", t.MemberCount, cli.FormatLimit(t.MaxMembers))
		if t.ExcessMemberCount > 0 {
			fmt.Fprintf(out, "  over limit by: %d\n", t.ExcessMemberCount)
		}
		for _, m := range t.Members {
			fmt.Fprintf(out, "  - %s %-8s joined %s\n", m.UserID, m.Role, m.JoinedAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print as JSON")
}
