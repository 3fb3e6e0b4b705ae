package etl

import (
	"fmt"
	"strings"
)

// Kind classifies a migration failure. Every Kind is an error so callers
// can test with errors.Is(err, etl.ErrWrite).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrConnectivity   Kind = "connectivity error"
	ErrSchemaCreation Kind = "schema creation error"
	ErrFetch          Kind = "fetch error"
	ErrWrite          Kind = "write error"
	ErrConfiguration  Kind = "configuration error"
)

// MigrationError carries the table and page a failure belongs to. Page is -1
// when the failure is not tied to a page.
type MigrationError struct {
	Kind  Kind
	Op    string
	Table string
	Page  int
	Err   error
}

func newError(kind Kind, op, table string, page int, err error) *MigrationError {
	return &MigrationError{Kind: kind, Op: op, Table: table, Page: page, Err: err}
}

func (e *MigrationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Table != "" {
		fmt.Fprintf(&b, " [table %s", e.Table)
		if e.Page >= 0 {
			fmt.Fprintf(&b, ", page %d", e.Page)
		}
		b.WriteString("]")
	}
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MigrationError) Unwrap() error { return e.Err }

func (e *MigrationError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
