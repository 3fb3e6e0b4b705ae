package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/BartekS5/mysql2sqlite/pkg/logger"
)

const (
	DriverMySQL     = "mysql"
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

// PoolOptions sizes the source connection pool. Every fetch worker holds
// one connection while its page query runs.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectSQL opens a pooled source database and verifies it answers.
func ConnectSQL(driver, connString string, opts PoolOptions) (*sql.DB, error) {
	if driver == DriverMySQL {
		normalized, err := NormalizeMySQLDSN(connString)
		if err != nil {
			return nil, err
		}
		connString = normalized
	}

	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database (ping failed): %w", driver, err)
	}

	logger.Infof("Successfully connected to %s source.", driver)
	return db, nil
}

// NormalizeMySQLDSN makes the driver hand DATETIME and TIMESTAMP columns back
// as time.Time, in the wall-clock form they are stored with.
func NormalizeMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql connection string: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}
