package etl

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// gauge tracks how many callers are inside a section and the peak reached.
type gauge struct {
	cur, max atomic.Int32
}

func (g *gauge) enter() {
	n := g.cur.Add(1)
	for {
		m := g.max.Load()
		if n <= m || g.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (g *gauge) leave() { g.cur.Add(-1) }

type memTable struct {
	schema  string
	columns []string
	rows    []models.Row
}

type memSource struct {
	mu      sync.Mutex
	order   []string
	tables  map[string]*memTable
	fetches []models.PageQuery
	counted map[string]string

	// predicates evaluates filter text, keyed by the filter string.
	predicates map[string]func(models.Row) bool
	fetchErr   func(q models.PageQuery) error
	listErr    error
	delay      time.Duration
	inFlight   gauge
}

func newMemSource() *memSource {
	return &memSource{
		tables:     map[string]*memTable{},
		counted:    map[string]string{},
		predicates: map[string]func(models.Row) bool{},
	}
}

func (s *memSource) addTable(name, schema string, columns []string, rows []models.Row) {
	s.order = append(s.order, name)
	s.tables[name] = &memTable{schema: schema, columns: columns, rows: rows}
}

// addIDTable adds a table whose rows carry only an integer id 0..n-1.
func (s *memSource) addIDTable(name string, n int) {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{"id": models.Integer(int64(i))}
	}
	s.addTable(name, fmt.Sprintf("CREATE TABLE %s (id INTEGER PRIMARY KEY)", name), []string{"id"}, rows)
}

func (s *memSource) filtered(table, filter string) []models.Row {
	rows := s.tables[table].rows
	pred, ok := s.predicates[filter]
	if filter == "" || !ok {
		return rows
	}
	var out []models.Row
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *memSource) ListTables(context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.order...), nil
}

func (s *memSource) FetchSchema(_ context.Context, table string) (string, error) {
	t, ok := s.tables[table]
	if !ok {
		return "", errors.New("no such table")
	}
	return t.schema, nil
}

func (s *memSource) CountRows(_ context.Context, table, filter string) (int, error) {
	s.mu.Lock()
	s.counted[table] = filter
	s.mu.Unlock()
	return len(s.filtered(table, filter)), nil
}

func (s *memSource) FetchPage(_ context.Context, q models.PageQuery) (*models.Page, error) {
	s.inFlight.enter()
	defer s.inFlight.leave()

	s.mu.Lock()
	s.fetches = append(s.fetches, q)
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fetchErr != nil {
		if err := s.fetchErr(q); err != nil {
			return nil, err
		}
	}

	rows := s.filtered(q.Table, q.Filter)
	start := min(q.Offset(), len(rows))
	end := min(start+q.Size, len(rows))

	page := &models.Page{Table: q.Table, Index: q.Index, Columns: s.tables[q.Table].columns}
	for _, r := range rows[start:end] {
		page.Rows = append(page.Rows, maps.Clone(r))
	}
	return page, nil
}

func (s *memSource) fetchesFor(table string) []models.PageQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PageQuery
	for _, q := range s.fetches {
		if q.Table == table {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// memLoader is a target store kept in memory. It does not lock around
// writes; callers are expected to serialize, and inFlight records whether
// they did.
type memLoader struct {
	mu        sync.Mutex
	created   []string
	data      map[string][]models.Row
	createErr func(table string) error
	writeErr  func(page *models.Page) error
	delay     time.Duration
	inFlight  gauge
	closed    int
}

func newMemLoader() *memLoader {
	return &memLoader{data: map[string][]models.Row{}}
}

func (l *memLoader) CreateTable(_ context.Context, table, _ string) error {
	if l.createErr != nil {
		if err := l.createErr(table); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created = append(l.created, table)
	return nil
}

func (l *memLoader) WritePage(_ context.Context, page *models.Page) error {
	l.inFlight.enter()
	defer l.inFlight.leave()

	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.writeErr != nil {
		if err := l.writeErr(page); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[page.Table] = append(l.data[page.Table], page.Rows...)
	return nil
}

func (l *memLoader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed++
	return nil
}

func (l *memLoader) rows(table string) []models.Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data[table]
}

// memTarget hands out the same memLoader for both phases.
type memTarget struct {
	loader  *memLoader
	creates int
	opens   int
}

func (t *memTarget) Create(context.Context) (Loader, error) {
	t.creates++
	return t.loader, nil
}

func (t *memTarget) Open(context.Context) (Loader, error) {
	t.opens++
	return t.loader, nil
}

func (t *memTarget) Path() string { return "memory" }

type recordingObserver struct {
	mu      sync.Mutex
	planned map[string]int
	fetched int
	written int
	failed  []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{planned: map[string]int{}}
}

func (o *recordingObserver) TablePlanned(table string, _ int, pages int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.planned[table] = pages
}

func (o *recordingObserver) PageFetched(string, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fetched++
}

func (o *recordingObserver) PageWritten(_ string, _ int, rows int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.written += rows
}

func (o *recordingObserver) PageFailed(_ string, _ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, err)
}
