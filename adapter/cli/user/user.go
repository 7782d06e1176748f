package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/arena/adapter/cli"
	"github.com/felixgeelhaar/arena/internal/identity/application/commands"
)

// Cmd is the user command group.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var registerCmd = &cobra.Command{
	Use:   "register [email] [name]",
	Short: "Register a user",
	Long: `Register a user so they can own organizations and join teams.

Examples:
  arena user register ana@acme.test "Ana Silva"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.RequireApp()
		if err != nil {
			return err
		}

		res, err := a.RegisterUserHandler.Handle(cmd.Context(), commands.RegisterUserCommand{
			Email: args[0],
			Name:  args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}
		cli.ReportPropagation(cmd, res.Propagation)

		u := res.Value
		fmt.Fprintf(cmd.OutOrStdout(), "User registered: %s\n", u.ID())
		fmt.Fprintf(cmd.OutOrStdout(), "  %s <%s>\n", u.Name(), u.Email())
		return nil
	},
}

func init() {
	Cmd.AddCommand(registerCmd)
}
