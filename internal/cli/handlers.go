package cli

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BartekS5/mysql2sqlite/internal/config"
	"github.com/BartekS5/mysql2sqlite/internal/etl"
	"github.com/BartekS5/mysql2sqlite/pkg/database"
	"github.com/BartekS5/mysql2sqlite/pkg/logger"
	"github.com/BartekS5/mysql2sqlite/pkg/metrics"
	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// session is everything a command needs before it can build a pipeline.
type session struct {
	cfg    *config.Config
	job    models.JobConfig
	db     *sql.DB
	source *etl.SQLSource
}

func openSession(cmd *cobra.Command, opts *MigrateOptions) (*session, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := logger.InitLogger(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		return nil, err
	}

	job, err := buildJob(cmd, opts)
	if err != nil {
		return nil, err
	}
	// Fail on a bad job before connecting anywhere.
	if err := etl.NewValidator(job).Validate(); err != nil {
		return nil, err
	}

	dialect, err := etl.DialectFor(cfg.SQLDriver)
	if err != nil {
		return nil, err
	}

	db, err := database.ConnectSQL(cfg.SQLDriver, cfg.SQLConnString, database.PoolOptions{
		MaxOpenConns: job.Workers,
		MaxIdleConns: job.Workers,
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, job: job, db: db, source: etl.NewSQLSource(db, dialect)}, nil
}

func (s *session) close() {
	s.db.Close()
	logger.Close()
}

func (s *session) output(opts *MigrateOptions) string {
	if opts.Output != "" {
		return opts.Output
	}
	return s.cfg.SQLiteOutput
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runMigration(cmd *cobra.Command, opts *MigrateOptions) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := commandContext(cmd)
	collector := metrics.NewCollector()
	observers := []etl.Observer{collector}

	if opts.MetricsAddr != "" {
		srvCtx, stop := context.WithCancel(ctx)
		defer stop()
		go func() {
			if err := collector.Serve(srvCtx, opts.MetricsAddr); err != nil {
				logger.Warnf("metrics server stopped: %v", err)
			}
		}()
	}

	if opts.Progress {
		bars := newProgressObserver(cmd.ErrOrStderr())
		defer bars.Close()
		observers = append(observers, bars)
	}

	target := etl.NewSQLiteTarget(s.output(opts), opts.Force).WithSourceDialect(s.source.Dialect.Name())
	pipeline, err := etl.NewPipeline(s.source, target, s.job, etl.WithObserver(etl.Observers(observers...)))
	if err != nil {
		return err
	}

	logger.Infof("Starting migration from %s into %s...", s.cfg.SQLDriver, target.Path())
	path, err := pipeline.Run(ctx)
	if err != nil {
		logger.Errorf("Migration failed: %v", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration finished successfully: %s\n", path)
	return nil
}

func runPlan(cmd *cobra.Command, opts *MigrateOptions) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	pipeline, err := etl.NewPipeline(s.source, etl.NewSQLiteTarget(s.output(opts), false), s.job)
	if err != nil {
		return err
	}

	plans, err := pipeline.Plan(commandContext(cmd))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tPAGES\tFILTER\tORDER BY")
	for _, p := range plans {
		if p.DataExcluded {
			fmt.Fprintf(tw, "%s\t-\t-\t(schema only)\t\n", p.Table)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", p.Table, p.Rows, p.Pages, orDash(p.Filter), orDash(p.Sort))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
