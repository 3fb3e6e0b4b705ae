package etl

import (
	"context"
	"time"

	"github.com/BartekS5/mysql2sqlite/pkg/logger"
	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// Pipeline copies a source database into a target store: schemas first,
// then the rows of every table, page by page on a bounded worker pool.
type Pipeline struct {
	source   Source
	target   Target
	job      models.JobConfig
	patterns tablePatterns
	workers  int
	pageSize int
	observer Observer
}

type Option func(*Pipeline)

// WithObserver reports progress to o.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPipeline validates job and binds it to src and tgt. The job is copied;
// later changes by the caller have no effect on the pipeline.
func NewPipeline(src Source, tgt Target, job models.JobConfig, opts ...Option) (*Pipeline, error) {
	job = job.Clone()
	patterns, err := NewValidator(job).compile()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		source:   src,
		target:   tgt,
		job:      job,
		patterns: patterns,
		workers:  job.Workers,
		pageSize: DefaultPageSize,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TablePlan is what a run would do for one table.
type TablePlan struct {
	Table        string
	DataExcluded bool
	Filter       string
	Sort         string
	Rows         int
	Pages        int
}

// TableResult is what a run did for one table.
type TableResult struct {
	Table    string
	Rows     int64
	Duration time.Duration
}

// Plan resolves the catalog and counts rows without touching the target.
func (p *Pipeline) Plan(ctx context.Context) ([]TablePlan, error) {
	tables, err := ResolveTables(ctx, p.source, p.patterns.excludeTables, p.patterns.excludeData)
	if err != nil {
		return nil, err
	}

	plans := make([]TablePlan, 0, len(tables))
	for _, t := range tables {
		plan := TablePlan{
			Table:        t.Name,
			DataExcluded: t.DataExcluded,
			Filter:       p.job.FilterFor(t.Name),
			Sort:         p.job.SortFor(t.Name),
		}
		if !t.DataExcluded {
			rows, err := p.source.CountRows(ctx, t.Name, plan.Filter)
			if err != nil {
				return nil, newError(ErrFetch, "count rows", t.Name, -1, err)
			}
			plan.Rows = rows
			plan.Pages = PageCount(rows, p.pageSize)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// Run performs the migration and returns the path of the finished target.
// Any failure aborts the run; pages committed before it stay in the target.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	start := time.Now()

	tables, err := ResolveTables(ctx, p.source, p.patterns.excludeTables, p.patterns.excludeData)
	if err != nil {
		return "", err
	}
	logger.Infof("Starting migration of %d tables. Workers: %d, Page Size: %d", len(tables), p.workers, p.pageSize)

	if err := p.bootstrap(ctx, tables); err != nil {
		return "", err
	}
	logger.Infof("Created %d tables in %s", len(tables), p.target.Path())

	results, err := p.copyData(ctx, tables)
	if err != nil {
		return "", err
	}

	var total int64
	for _, r := range results {
		logger.Infof("Table %s: %d rows in %s", r.Table, r.Rows, r.Duration.Round(time.Millisecond))
		total += r.Rows
	}
	logger.Infof("Migration finished: %d rows across %d tables in %s", total, len(results), time.Since(start).Round(time.Millisecond))

	return p.target.Path(), nil
}

func (p *Pipeline) bootstrap(ctx context.Context, tables []models.Table) (err error) {
	loader, err := p.target.Create(ctx)
	if err != nil {
		return newError(ErrConnectivity, "create target store", "", -1, err)
	}
	defer func() {
		if cerr := loader.Close(); cerr != nil && err == nil {
			err = newError(ErrConnectivity, "close target store", "", -1, cerr)
		}
	}()

	return CreateTables(ctx, loader, tables)
}

func (p *Pipeline) copyData(ctx context.Context, tables []models.Table) (results []TableResult, err error) {
	loader, err := p.target.Open(ctx)
	if err != nil {
		return nil, newError(ErrConnectivity, "open target store", "", -1, err)
	}
	defer func() {
		if cerr := loader.Close(); cerr != nil && err == nil {
			err = newError(ErrConnectivity, "close target store", "", -1, cerr)
		}
	}()

	w := NewWriter(loader, p.observer)
	for _, t := range tables {
		if t.DataExcluded {
			logger.Infof("Skipping data of table %s", t.Name)
			continue
		}

		started := time.Now()
		rows, err := p.migrateTableData(ctx, w, t)
		if err != nil {
			return nil, err
		}
		results = append(results, TableResult{Table: t.Name, Rows: rows, Duration: time.Since(started)})
	}
	return results, nil
}
