package models

// Table describes one source table for the duration of a run.
type Table struct {
	Name   string
	Schema string
	// DataExcluded tables get their schema created but no rows copied.
	DataExcluded bool
}

// Row maps column names to values. Column order is carried by the Page.
type Row map[string]Value

// PageQuery is one unit of fetch work: a LIMIT/OFFSET window over a table.
type PageQuery struct {
	Table  string
	Index  int
	Size   int
	Filter string
	Sort   string
}

// Offset is the first row of the window.
func (q PageQuery) Offset() int {
	return q.Index * q.Size
}

// Page is the result of a PageQuery, ready to be written as one transaction.
type Page struct {
	Table   string
	Index   int
	Columns []string
	Rows    []Row
}

// Values returns the bind arguments of row i in column order.
func (p *Page) Values(i int) []any {
	row := p.Rows[i]
	args := make([]any, len(p.Columns))
	for c, col := range p.Columns {
		args[c] = row[col].Any()
	}
	return args
}
