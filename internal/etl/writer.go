package etl

import (
	"context"
	"sync"
	"time"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// Writer is the only path to the target Loader during the data phase. One
// mutex covers every table: SQLite takes a single writer, and fetches keep
// running in parallel while a page waits here.
type Writer struct {
	mu       sync.Mutex
	loader   Loader
	observer Observer
}

func NewWriter(loader Loader, observer Observer) *Writer {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Writer{loader: loader, observer: observer}
}

// WritePage commits page as one transaction. On failure nothing of the page
// is applied and earlier pages stay committed.
func (w *Writer) WritePage(ctx context.Context, page *models.Page) error {
	start := time.Now()
	w.mu.Lock()
	wait := time.Since(start)
	err := w.loader.WritePage(ctx, page)
	w.mu.Unlock()

	if err != nil {
		return newError(ErrWrite, "write page", page.Table, page.Index, err)
	}
	w.observer.PageWritten(page.Table, page.Index, len(page.Rows), wait)
	return nil
}
