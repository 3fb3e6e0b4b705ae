package etl

import (
	"context"
	"regexp"

	"github.com/BartekS5/mysql2sqlite/pkg/models"
)

// ResolveTables lists the source tables in catalog order, drops those
// matching excludeTables and fetches the schema of the rest. Tables matching
// excludeData are kept but flagged so no rows are copied for them.
func ResolveTables(ctx context.Context, cat Catalog, excludeTables, excludeData *regexp.Regexp) ([]models.Table, error) {
	names, err := cat.ListTables(ctx)
	if err != nil {
		return nil, newError(ErrConnectivity, "list tables", "", -1, err)
	}

	tables := make([]models.Table, 0, len(names))
	for _, name := range names {
		if matches(excludeTables, name) {
			continue
		}

		schema, err := cat.FetchSchema(ctx, name)
		if err != nil {
			return nil, newError(ErrConnectivity, "fetch schema", name, -1, err)
		}

		tables = append(tables, models.Table{
			Name:         name,
			Schema:       schema,
			DataExcluded: matches(excludeData, name),
		})
	}
	return tables, nil
}
