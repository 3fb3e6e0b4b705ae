package etl

import (
	"context"
	"errors"
	"strings"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// CreateTables creates every table in order before any row is written, so
// the whole table set exists when data starts arriving.
func CreateTables(ctx context.Context, loader Loader, tables []models.Table) error {
	for _, t := range tables {
		if strings.TrimSpace(t.Schema) == "" {
			return newError(ErrSchemaCreation, "create table", t.Name, -1, errors.New("empty schema definition"))
		}
		if err := loader.CreateTable(ctx, t.Name, t.Schema); err != nil {
			return newError(ErrSchemaCreation, "create table", t.Name, -1, err)
		}
	}
	return nil
}
