package team

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	teams "github.com/felixgeelhaar/arena/internal/teams/domain"
)

// Cmd is the team command group.
var Cmd = &cobra.Command{
	Use:   "team",
	Short: "Manage sales teams",
	Long: `Create teams and manage their members. A team's member cap follows
the organization's plan.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(addMemberCmd)
	Cmd.AddCommand(removeMemberCmd)
}

func printTeam(cmd *cobra.Command, verb string, t *teams.Team) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Team %s: %s\n", verb, t.ID())
	fmt.Fprintf(out, "  name: %s\n", t.Name())
	fmt.Fprintf(out, "  members: %d/%s\n", t.MemberCount(), cli.FormatLimit(t.MaxMembers()))
	if excess := t.ExcessMemberCount(); excess > 0 {
		fmt.Fprintf(out, "  over limit by: %d\n", excess)
	}
}
