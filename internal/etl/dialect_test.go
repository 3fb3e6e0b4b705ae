package etl

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

func TestWhereClause(t *testing.T) {
	assert.Equal(t, "1=1", whereClause(""))
	assert.Equal(t, "1=1", whereClause("   "))
	assert.Equal(t, "(a = 1 OR b = 2)", whereClause("a = 1 OR b = 2"))
}

func TestMySQLDialectQueries(t *testing.T) {
	d := MySQLDialect{}

	assert.Equal(t, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'", d.ListTablesQuery())
	assert.Equal(t, "SELECT COUNT(1) FROM `users` WHERE (status = 'ACTIVE')", countQuery(d, "users", "status = 'ACTIVE'"))
	assert.Equal(t, "SELECT * FROM `users` WHERE 1=1 ORDER BY id DESC LIMIT 1000 OFFSET 2000",
		d.PageQuery("users", "1=1", "id DESC", 1000, 2000))
	assert.Equal(t, "SELECT * FROM `users` WHERE 1=1 LIMIT 1000 OFFSET 0",
		d.PageQuery("users", "1=1", "", 1000, 0))
	assert.Equal(t, "`we``ird`", d.QuoteIdent("we`ird"))
}

func TestSQLServerDialectQueries(t *testing.T) {
	d := SQLServerDialect{}

	assert.Equal(t, "SELECT COUNT(1) FROM [users] WHERE 1=1", countQuery(d, "users", ""))
	assert.Equal(t, "SELECT * FROM [users] WHERE 1=1 ORDER BY (SELECT NULL) OFFSET 1000 ROWS FETCH NEXT 1000 ROWS ONLY",
		d.PageQuery("users", "1=1", "", 1000, 1000))
	assert.Equal(t, "SELECT * FROM [users] WHERE (id > 5) ORDER BY id OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY",
		d.PageQuery("users", "(id > 5)", "id", 10, 0))
}

func TestSQLServerCreateTable(t *testing.T) {
	d := SQLServerDialect{}
	cols := []sqlServerColumn{
		{Name: "id", DataType: "int", Nullable: "NO"},
		{Name: "name", DataType: "nvarchar", MaxLength: sql.NullInt64{Int64: 50, Valid: true}, Nullable: "YES"},
		{Name: "notes", DataType: "nvarchar", MaxLength: sql.NullInt64{Int64: -1, Valid: true}, Nullable: "YES"},
		{Name: "price", DataType: "decimal", Precision: sql.NullInt64{Int64: 10, Valid: true}, Scale: sql.NullInt64{Int64: 2, Valid: true}, Nullable: "NO"},
	}

	want := "CREATE TABLE [items] (\n" +
		"  [id] int NOT NULL,\n" +
		"  [name] nvarchar(50),\n" +
		"  [notes] nvarchar,\n" +
		"  [price] decimal(10,2) NOT NULL,\n" +
		"  PRIMARY KEY ([id])\n" +
		")"
	assert.Equal(t, want, d.buildCreateTable("items", cols, []string{"[id]"}))
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"mysql", "sqlserver", "sqlite"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}

	_, err := DialectFor("oracle")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSQLSourceAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, filepath.Join(t.TempDir(), "src.db"))

	for _, s := range []string{
		"CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, price REAL, data BLOB)",
		"INSERT INTO items (name, price, data) VALUES ('a', 1.5, x'0102'), ('b', NULL, NULL), ('c', 3, NULL)",
	} {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}

	src := NewSQLSource(db, SQLiteDialect{})

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"items"}, tables, "sqlite_sequence is internal")

	schema, err := src.FetchSchema(ctx, "items")
	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE items")

	n, err := src.CountRows(ctx, "items", "price IS NOT NULL")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := src.FetchPage(ctx, models.PageQuery{Table: "items", Index: 1, Size: 2, Sort: "id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "price", "data"}, page.Columns)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "c", page.Rows[0]["name"].Any())

	page, err = src.FetchPage(ctx, models.PageQuery{Table: "items", Size: 2, Sort: "id"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, int64(1), page.Rows[0]["id"].Any())
	assert.Equal(t, 1.5, page.Rows[0]["price"].Any())
	assert.Equal(t, []byte{1, 2}, page.Rows[0]["data"].Any())
	assert.True(t, page.Rows[1]["price"].IsNull())
}

func TestSQLSourceMissingTableSchema(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "src.db"))
	_, err := NewSQLSource(db, SQLiteDialect{}).FetchSchema(context.Background(), "nope")
	assert.Error(t, err)
}
