package cli

import (
	"github.com/spf13/cobra"
)

// MigrateOptions holds the flags shared by migrate and plan. Job fields set
// here override the job file.
type MigrateOptions struct {
	JobFile        string
	Workers        int
	ExcludeTables  string
	ExcludeData    string
	Where          []string
	OrderBy        []string
	DefaultOrderBy string
	Output         string
	Force          bool
	MetricsAddr    string
	Progress       bool
}

func NewMigrateCmd() *cobra.Command {
	return newMigrateCmd(&MigrateOptions{})
}

func newMigrateCmd(opts *MigrateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the source database into a SQLite file",
		RunE: func(c *cobra.Command, args []string) error {
			return runMigration(c, opts)
		},
	}

	addJobFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace the output file if it already exists")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run (e.g. :9090)")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "Show a progress bar per table")
	return cmd
}

func NewPlanCmd() *cobra.Command {
	return newPlanCmd(&MigrateOptions{})
}

func newPlanCmd(opts *MigrateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the tables, filters and page counts a migration would use, without writing anything",
		RunE: func(c *cobra.Command, args []string) error {
			return runPlan(c, opts)
		},
	}

	addJobFlags(cmd, opts)
	return cmd
}

func addJobFlags(cmd *cobra.Command, opts *MigrateOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.JobFile, "job-file", "j", "", "Path to a YAML job file")
	f.IntVarP(&opts.Workers, "workers", "w", 4, "Number of pages fetched concurrently")
	f.StringVar(&opts.ExcludeTables, "exclude-tables", "", "Regular expression of tables to skip entirely")
	f.StringVar(&opts.ExcludeData, "exclude-data", "", "Regular expression of tables created without rows")
	f.StringArrayVar(&opts.Where, "where", nil, "Row filter as table=predicate (repeatable)")
	f.StringArrayVar(&opts.OrderBy, "order-by", nil, "Sort order as table=columns (repeatable)")
	f.StringVar(&opts.DefaultOrderBy, "default-order-by", "", "Sort order for tables without --order-by")
	f.StringVarP(&opts.Output, "output", "o", "", "Path of the SQLite file (default $SQLITE_OUTPUT)")
}
