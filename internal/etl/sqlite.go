package etl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/BartekS5/mysql2sqlite/pkg/models"
	"github.com/BartekS5/mysql2sqlite/pkg/utils"
)

// SQLiteTarget is a SQLite database file.
type SQLiteTarget struct {
	path      string
	overwrite bool
	translate bool
}

// NewSQLiteTarget returns a target at path. With overwrite set, Create
// replaces an existing file instead of failing. Schemas are expected in
// MySQL form unless WithSourceDialect says otherwise.
func NewSQLiteTarget(path string, overwrite bool) *SQLiteTarget {
	return &SQLiteTarget{path: path, overwrite: overwrite, translate: true}
}

// WithSourceDialect names the dialect schemas are written in. Only MySQL
// schemas are rewritten; the others are executed as they are.
func (t *SQLiteTarget) WithSourceDialect(name string) *SQLiteTarget {
	t.translate = name == "mysql"
	return t
}

func (t *SQLiteTarget) Path() string { return t.path }

// Create makes a new, empty database file.
func (t *SQLiteTarget) Create(ctx context.Context) (Loader, error) {
	_, err := os.Stat(t.path)
	switch {
	case err == nil:
		if !t.overwrite {
			return nil, fmt.Errorf("target %s already exists", t.path)
		}
		for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
			if err := os.Remove(t.path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("removing existing target: %w", err)
			}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("checking target: %w", err)
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating target directory: %w", err)
		}
	}
	return openSQLite(ctx, t.path, t.translate)
}

// Open reopens the file made by Create.
func (t *SQLiteTarget) Open(ctx context.Context) (Loader, error) {
	if _, err := os.Stat(t.path); err != nil {
		return nil, fmt.Errorf("opening target: %w", err)
	}
	return openSQLite(ctx, t.path, t.translate)
}

// SQLiteLoader writes into an open SQLite file over a single connection.
type SQLiteLoader struct {
	db        *sql.DB
	path      string
	translate bool
}

func openSQLite(ctx context.Context, path string, translate bool) (*SQLiteLoader, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(0)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &SQLiteLoader{db: db, path: path, translate: translate}, nil
}

// CreateTable creates table from its source definition, translated to
// statements SQLite accepts when it comes from MySQL, in one transaction.
func (l *SQLiteLoader) CreateTable(ctx context.Context, table, schema string) error {
	stmts := []string{schema}
	if l.translate {
		stmts = utils.TranslateSchema(table, schema)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(stmt), err)
		}
	}
	return tx.Commit()
}

// WritePage inserts every row of page in one transaction.
func (l *SQLiteLoader) WritePage(ctx context.Context, page *models.Page) error {
	if len(page.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(page.Columns))
	for i, c := range page.Columns {
		cols[i] = utils.QuoteIdent(c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		utils.QuoteIdent(page.Table),
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range page.Rows {
		if _, err := stmt.ExecContext(ctx, page.Values(i)...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database file.
func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
