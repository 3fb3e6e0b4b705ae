package etl

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/mysql2sqlite/pkg/logger"
	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// DefaultPageSize is the number of rows one fetch unit reads.
const DefaultPageSize = 1000

// PageCount returns how many fetch units cover rows. It is always at least
// one, and one more than needed when rows is a multiple of pageSize; the
// extra unit reads an empty page.
func PageCount(rows, pageSize int) int {
	return rows/pageSize + 1
}

// migrateTableData copies one table and returns the number of rows written.
// It returns only after every fetch unit it started has finished, with the
// first unit failure if there was one.
func (p *Pipeline) migrateTableData(ctx context.Context, w *Writer, table models.Table) (int64, error) {
	filter := p.job.FilterFor(table.Name)
	sort := p.job.SortFor(table.Name)

	rows, err := p.source.CountRows(ctx, table.Name, filter)
	if err != nil {
		return 0, newError(ErrFetch, "count rows", table.Name, -1, err)
	}

	pages := PageCount(rows, p.pageSize)
	p.observer.TablePlanned(table.Name, rows, pages)
	logger.With(zap.String("table", table.Name)).Info("copying table",
		zap.Int("rows", rows), zap.Int("pages", pages), zap.String("filter", filter), zap.String("sort", sort))

	var written atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	for i := 0; i < pages; i++ {
		q := models.PageQuery{
			Table:  table.Name,
			Index:  i,
			Size:   p.pageSize,
			Filter: filter,
			Sort:   sort,
		}
		g.Go(func() error {
			n, err := p.runUnit(ctx, w, q)
			written.Add(int64(n))
			return err
		})
	}

	err = g.Wait()
	return written.Load(), err
}

// runUnit fetches, normalizes and writes one page.
func (p *Pipeline) runUnit(ctx context.Context, w *Writer, q models.PageQuery) (int, error) {
	log := logger.With(zap.String("table", q.Table), zap.Int("page", q.Index))

	page, err := p.source.FetchPage(ctx, q)
	if err != nil {
		merr := newError(ErrFetch, "fetch page", q.Table, q.Index, err)
		p.observer.PageFailed(q.Table, q.Index, merr)
		log.Error("fetch failed", zap.Error(err))
		return 0, merr
	}
	page.Table, page.Index = q.Table, q.Index
	p.observer.PageFetched(q.Table, q.Index, len(page.Rows))

	NormalizePage(page)

	if err := w.WritePage(ctx, page); err != nil {
		p.observer.PageFailed(q.Table, q.Index, err)
		log.Error("write failed", zap.Error(err))
		return 0, err
	}

	log.Debug("page written", zap.Int("rows", len(page.Rows)))
	return len(page.Rows), nil
}
