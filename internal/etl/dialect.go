package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// queryer is satisfied by *sql.DB and *sql.Conn.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect holds the source-specific SQL of a SQLSource.
type Dialect interface {
	Name() string
	QuoteIdent(name string) string
	ListTablesQuery() string
	FetchSchema(ctx context.Context, q queryer, table string) (string, error)
	PageQuery(table, where, orderBy string, limit, offset int) string
}

// DialectFor returns the dialect matching a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQLDialect{}, nil
	case "sqlserver":
		return SQLServerDialect{}, nil
	case "sqlite":
		return SQLiteDialect{}, nil
	default:
		return nil, newError(ErrConfiguration, "select dialect", "", -1, fmt.Errorf("unsupported source driver %q", driver))
	}
}

// whereClause is "1=1" for a blank filter, the parenthesized filter otherwise.
func whereClause(filter string) string {
	if strings.TrimSpace(filter) == "" {
		return "1=1"
	}
	return "(" + filter + ")"
}

func countQuery(d Dialect, table, filter string) string {
	return "SELECT COUNT(1) FROM " + d.QuoteIdent(table) + " WHERE " + whereClause(filter)
}

func limitOffsetQuery(d Dialect, table, where, orderBy string, limit, offset int) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(d.QuoteIdent(table))
	b.WriteString(" WHERE ")
	b.WriteString(where)
	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}
	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", limit, offset)
	return b.String()
}

// MySQLDialect reads MySQL and MariaDB.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ListTablesQuery skips views: SHOW CREATE TABLE on a view returns a view
// definition, which is not something a table can be created from.
func (MySQLDialect) ListTablesQuery() string {
	return "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'"
}

func (d MySQLDialect) FetchSchema(ctx context.Context, q queryer, table string) (string, error) {
	var name, schema string
	err := q.QueryRowContext(ctx, "SHOW CREATE TABLE "+d.QuoteIdent(table)).Scan(&name, &schema)
	if err != nil {
		return "", err
	}
	return schema, nil
}

func (d MySQLDialect) PageQuery(table, where, orderBy string, limit, offset int) string {
	return limitOffsetQuery(d, table, where, orderBy, limit, offset)
}

// SQLiteDialect reads another SQLite file.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (SQLiteDialect) ListTablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
}

func (SQLiteDialect) FetchSchema(ctx context.Context, q queryer, table string) (string, error) {
	var schema string
	err := q.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&schema)
	if err != nil {
		return "", err
	}
	return schema, nil
}

func (d SQLiteDialect) PageQuery(table, where, orderBy string, limit, offset int) string {
	return limitOffsetQuery(d, table, where, orderBy, limit, offset)
}

// SQLServerDialect reads Microsoft SQL Server. SQL Server has no SHOW CREATE
// TABLE, so the schema is rebuilt from INFORMATION_SCHEMA as a plain
// CREATE TABLE with column types, nullability and the primary key.
type SQLServerDialect struct{}

func (SQLServerDialect) Name() string { return "sqlserver" }

func (SQLServerDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (SQLServerDialect) ListTablesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
}

const sqlServerColumnsQuery = `SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE, IS_NULLABLE
FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION`

const sqlServerPrimaryKeyQuery = `SELECT kcu.COLUMN_NAME
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
  ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME AND tc.TABLE_NAME = kcu.TABLE_NAME
WHERE tc.TABLE_NAME = @p1 AND tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
ORDER BY kcu.ORDINAL_POSITION`

type sqlServerColumn struct {
	Name      string
	DataType  string
	MaxLength sql.NullInt64
	Precision sql.NullInt64
	Scale     sql.NullInt64
	Nullable  string
}

func (d SQLServerDialect) FetchSchema(ctx context.Context, q queryer, table string) (string, error) {
	rows, err := q.QueryContext(ctx, sqlServerColumnsQuery, table)
	if err != nil {
		return "", err
	}
	var cols []sqlServerColumn
	for rows.Next() {
		var c sqlServerColumn
		if err := rows.Scan(&c.Name, &c.DataType, &c.MaxLength, &c.Precision, &c.Scale, &c.Nullable); err != nil {
			rows.Close()
			return "", err
		}
		cols = append(cols, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("no columns found for table %s", table)
	}

	pkRows, err := q.QueryContext(ctx, sqlServerPrimaryKeyQuery, table)
	if err != nil {
		return "", err
	}
	defer pkRows.Close()
	var pk []string
	for pkRows.Next() {
		var col string
		if err := pkRows.Scan(&col); err != nil {
			return "", err
		}
		pk = append(pk, d.QuoteIdent(col))
	}
	if err := pkRows.Err(); err != nil {
		return "", err
	}

	return d.buildCreateTable(table, cols, pk), nil
}

func (d SQLServerDialect) buildCreateTable(table string, cols []sqlServerColumn, pk []string) string {
	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		def := d.QuoteIdent(c.Name) + " " + sqlServerType(c)
		if strings.EqualFold(c.Nullable, "NO") {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	if len(pk) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return "CREATE TABLE " + d.QuoteIdent(table) + " (\n  " + strings.Join(defs, ",\n  ") + "\n)"
}

func sqlServerType(c sqlServerColumn) string {
	t := strings.ToLower(c.DataType)
	switch t {
	case "char", "varchar", "nchar", "nvarchar", "binary", "varbinary":
		if c.MaxLength.Valid && c.MaxLength.Int64 > 0 {
			return fmt.Sprintf("%s(%d)", t, c.MaxLength.Int64)
		}
		return t
	case "decimal", "numeric":
		if c.Precision.Valid {
			return fmt.Sprintf("%s(%d,%d)", t, c.Precision.Int64, c.Scale.Int64)
		}
		return t
	default:
		return t
	}
}

// PageQuery pages with OFFSET/FETCH, which needs an ORDER BY; without a
// sort order, row order is left to the server.
func (d SQLServerDialect) PageQuery(table, where, orderBy string, limit, offset int) string {
	if orderBy == "" {
		orderBy = "(SELECT NULL)"
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY %s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY",
		d.QuoteIdent(table), where, orderBy, offset, limit)
}
