package etl

import (
	"context"
	"time"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// Catalog answers questions about the source's tables.
type Catalog interface {
	ListTables(ctx context.Context) ([]string, error)
	FetchSchema(ctx context.Context, table string) (string, error)
	CountRows(ctx context.Context, table, filter string) (int, error)
}

// Extractor reads one page of rows. Implementations must be safe for
// concurrent use; every call is made from its own worker.
type Extractor interface {
	FetchPage(ctx context.Context, q models.PageQuery) (*models.Page, error)
}

// Source is everything the engine needs from the source database.
type Source interface {
	Catalog
	Extractor
}

// Loader is an open handle on the target store. It is not safe for
// concurrent use; the engine serializes every call through a Writer.
type Loader interface {
	CreateTable(ctx context.Context, table, schema string) error
	WritePage(ctx context.Context, page *models.Page) error
	Close() error
}

// Target opens the target store: once fresh for schema creation, then again
// for data.
type Target interface {
	Create(ctx context.Context) (Loader, error)
	Open(ctx context.Context) (Loader, error)
	Path() string
}

// Observer is told about progress. Calls come from worker goroutines.
type Observer interface {
	TablePlanned(table string, rows, pages int)
	PageFetched(table string, page, rows int)
	PageWritten(table string, page, rows int, wait time.Duration)
	PageFailed(table string, page int, err error)
}

type nopObserver struct{}

func (nopObserver) TablePlanned(string, int, int)               {}
func (nopObserver) PageFetched(string, int, int)                {}
func (nopObserver) PageWritten(string, int, int, time.Duration) {}
func (nopObserver) PageFailed(string, int, error)               {}

type multiObserver []Observer

// Observers fans every event out to each of obs.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

func (m multiObserver) TablePlanned(table string, rows, pages int) {
	for _, o := range m {
		o.TablePlanned(table, rows, pages)
	}
}

func (m multiObserver) PageFetched(table string, page, rows int) {
	for _, o := range m {
		o.PageFetched(table, page, rows)
	}
}

func (m multiObserver) PageWritten(table string, page, rows int, wait time.Duration) {
	for _, o := range m {
		o.PageWritten(table, page, rows, wait)
	}
}

func (m multiObserver) PageFailed(table string, page int, err error) {
	for _, o := range m {
		o.PageFailed(table, page, err)
	}
}
