package query

import (
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SortField is one ORDER BY term. Field is a logical name from the projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses a comma-separated sort string such as "name,-receivedAt".
// A leading "-" sorts descending. Returns nil for empty input.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// Builder accumulates conditions and ordering over a projection and renders
// Postgres statements with numbered placeholders.
type Builder struct {
	projection  *ProjectionMap
	where       sq.And
	orderBy     []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection with optional default ordering.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// Build returns a SELECT over the projection with conditions and ordering.
func (b *Builder) Build() (string, []any, error) {
	return b.selectBuilder().OrderBy(b.orderClauses()...).ToSql()
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any, error) {
	return b.filter(psql.Select("COUNT(*)").From(b.projection.From())).ToSql()
}

// BuildPage returns a SELECT limited to one page. Pages are 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any, error) {
	offset := max(page-1, 0) * pageSize
	return b.selectBuilder().
		OrderBy(b.orderClauses()...).
		Limit(uint64(pageSize)).
		Offset(uint64(offset)).
		ToSql()
}

// BuildSingle returns a SELECT for the row whose field equals value.
func (b *Builder) BuildSingle(field string, value any) (string, []any, error) {
	col, ok := b.projection.Column(field)
	if !ok {
		return "", nil, fmt.Errorf("unknown field %q", field)
	}
	return psql.
		Select(b.projection.Columns()...).
		From(b.projection.From()).
		Where(sq.Eq{col: value}).
		ToSql()
}

// OrderByFields replaces the default ordering. Unmapped fields are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderBy = fields
	return b
}

// WhereEquals adds an equality condition. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	col, ok := b.projection.Column(field)
	if !ok || isNil(value) {
		return b
	}
	b.where = append(b.where, sq.Eq{col: deref(value)})
	return b
}

// WhereContains adds a case-insensitive contains condition. No-op for nil or empty values.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	col, ok := b.projection.Column(field)
	if !ok || value == nil || *value == "" {
		return b
	}
	b.where = append(b.where, sq.ILike{col: "%" + *value + "%"})
	return b
}

// WhereIn adds an IN condition. No-op for empty slices.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	col, ok := b.projection.Column(field)
	if !ok || len(values) == 0 {
		return b
	}
	b.where = append(b.where, sq.Eq{col: values})
	return b
}

// WhereNullable adds an equality condition, or IS NULL when value is nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	col, ok := b.projection.Column(field)
	if !ok {
		return b
	}
	if isNil(value) {
		b.where = append(b.where, sq.Eq{col: nil})
		return b
	}
	b.where = append(b.where, sq.Eq{col: deref(value)})
	return b
}

// WhereSearch adds an OR of case-insensitive contains conditions across fields.
// No-op for nil or empty search.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" {
		return b
	}

	var or sq.Or
	for _, f := range fields {
		if col, ok := b.projection.Column(f); ok {
			or = append(or, sq.ILike{col: "%" + *search + "%"})
		}
	}
	if len(or) > 0 {
		b.where = append(b.where, or)
	}
	return b
}

func (b *Builder) selectBuilder() sq.SelectBuilder {
	return b.filter(psql.Select(b.projection.Columns()...).From(b.projection.From()))
}

func (b *Builder) filter(sb sq.SelectBuilder) sq.SelectBuilder {
	if len(b.where) == 0 {
		return sb
	}
	return sb.Where(b.where)
}

func (b *Builder) orderClauses() []string {
	fields := b.orderBy
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	var clauses []string
	for _, f := range fields {
		col, ok := b.projection.Column(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			clauses = append(clauses, col+" DESC")
		} else {
			clauses = append(clauses, col+" ASC")
		}
	}
	return clauses
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func deref(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}
