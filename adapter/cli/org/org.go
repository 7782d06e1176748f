package org

import "github.com/spf13/cobra"

// Cmd is the organization command group.
var Cmd = &cobra.Command{
	Use:     "org",
	Aliases: []string{"organization"},
	Short:   "Manage organizations",
	Long:    `Create, inspect and rename organizations.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(renameCmd)
}
