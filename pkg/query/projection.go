// Package query builds filtered, sorted, and paginated SELECT statements over
// a projection of logical field names onto qualified Postgres columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified columns (alias.column)
// for a single table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	ordered []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps a database column to a logical field name. Projection order
// is the SELECT column order, so scanners must follow it.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// From returns the table reference with alias (schema.table alias).
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for field and whether it is mapped.
func (p *ProjectionMap) Column(field string) (string, bool) {
	col, ok := p.columns[field]
	return col, ok
}

// Columns returns the projected columns in projection order.
func (p *ProjectionMap) Columns() []string {
	return p.ordered
}

// String renders the projected columns as a SELECT list.
func (p *ProjectionMap) String() string {
	return strings.Join(p.ordered, ", ")
}
