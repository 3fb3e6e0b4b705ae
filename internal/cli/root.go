// Package cli wires the command-line interface with Cobra.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mysql2sqlite",
		Short: "mysql2sqlite - copy a MySQL database into a SQLite file",
		Long: `mysql2sqlite copies every table of a MySQL (or SQL Server, or SQLite) database into
a single SQLite file: schemas first, then rows, page by page on a bounded pool of workers.
Connection and logging settings come from the environment (or a .env file).`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewMigrateCmd(), NewPlanCmd())

	return rootCmd
}
