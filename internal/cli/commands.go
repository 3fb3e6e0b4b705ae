package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BartekS5/mysql2sqlite/internal/config"
	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// buildJob loads the job file, if any, and applies the flags the user set
// on top of it.
func buildJob(cmd *cobra.Command, opts *MigrateOptions) (models.JobConfig, error) {
	var job models.JobConfig
	if opts.JobFile != "" {
		loaded, err := config.LoadJob(opts.JobFile)
		if err != nil {
			return job, err
		}
		job = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("workers") || job.Workers == 0 {
		job.Workers = opts.Workers
	}
	if flags.Changed("exclude-tables") {
		job.ExcludeTables = opts.ExcludeTables
	}
	if flags.Changed("exclude-data") {
		job.ExcludeData = opts.ExcludeData
	}
	if flags.Changed("default-order-by") {
		job.DefaultOrderBy = opts.DefaultOrderBy
	}

	where, err := parseAssignments("where", opts.Where)
	if err != nil {
		return job, err
	}
	job.Where = merge(job.Where, where)

	orderBy, err := parseAssignments("order-by", opts.OrderBy)
	if err != nil {
		return job, err
	}
	job.OrderBy = merge(job.OrderBy, orderBy)

	return job, nil
}

// parseAssignments splits table=value pairs at the first "=", so values may
// contain "=" themselves.
func parseAssignments(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		table, value, ok := strings.Cut(v, "=")
		table = strings.TrimSpace(table)
		if !ok || table == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected table=value", flag, v)
		}
		out[table] = value
	}
	return out, nil
}

func merge(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
