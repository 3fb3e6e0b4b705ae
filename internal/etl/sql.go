package etl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
	"github.com/BartekS5/mysql2sqlite/pkg/utils"
)

var errNoSchema = errors.New("source returned no schema")

// SQLSource reads a database/sql source through a Dialect. The pool must
// allow one connection per worker.
type SQLSource struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLSource(db *sql.DB, dialect Dialect) *SQLSource {
	return &SQLSource{DB: db, Dialect: dialect}
}

func (s *SQLSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, s.Dialect.ListTablesQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var names []string
	for rows.Next() {
		// SHOW FULL TABLES has a second column; only the first is the name.
		vals := make([]sql.RawBytes, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		names = append(names, string(vals[0]))
	}
	return names, rows.Err()
}

func (s *SQLSource) FetchSchema(ctx context.Context, table string) (string, error) {
	schema, err := s.Dialect.FetchSchema(ctx, s.DB, table)
	if err != nil {
		return "", err
	}
	if schema == "" {
		return "", errNoSchema
	}
	return schema, nil
}

func (s *SQLSource) CountRows(ctx context.Context, table, filter string) (int, error) {
	var n int64
	if err := s.DB.QueryRowContext(ctx, countQuery(s.Dialect, table, filter)).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// FetchPage runs the page query on a connection of its own and decodes
// every column into a models.Value.
func (s *SQLSource) FetchPage(ctx context.Context, q models.PageQuery) (*models.Page, error) {
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query := s.Dialect.PageQuery(q.Table, whereClause(q.Filter), q.Sort, q.Size, q.Offset())
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(types))
	for i, t := range types {
		cols[i] = t.Name()
	}

	page := &models.Page{Table: q.Table, Index: q.Index, Columns: cols}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(models.Row, len(cols))
		for i, col := range cols {
			v, err := utils.ToValue(vals[i], types[i].DatabaseTypeName())
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			row[col] = v
		}
		page.Rows = append(page.Rows, row)
	}
	return page, rows.Err()
}
