package querysql

import (
	"strings"
)

// Field is one column/value pair of an INSERT or UPDATE.
type Field struct {
	Column string
	Value  any
}

// F is shorthand for Field{Column: column, Value: value}.
func F(column string, value any) Field {
	return Field{Column: column, Value: value}
}

// Fields is an ordered column/value list. Statement column order is slice order.
type Fields []Field

// Columns returns the column names in order.
func (fs Fields) Columns() []string {
	cols := make([]string, len(fs))
	for i, f := range fs {
		cols[i] = f.Column
	}
	return cols
}

// Params maps placeholder names to values. Keys may carry a leading
// ':', '@' or '$'; "target_id" and ":target_id" name the same parameter.
type Params map[string]any

// SelectSpec describes a SELECT (or its COUNT companion).
type SelectSpec struct {
	// Table is the source table.
	Table string

	// Columns is the projection. Empty selects all columns.
	Columns []string

	// Filter is an optional WHERE template with named placeholders.
	Filter string

	// Params binds the Filter placeholders.
	Params Params

	// OrderBy is an optional column to order by ascending.
	OrderBy string
}

// Statement is a parameterized statement ready for database/sql.
type Statement struct {
	// SQL is the statement text with named placeholders.
	SQL string

	// Args holds one sql.NamedArg per placeholder, in first-appearance order.
	Args []any
}

// trimParamName strips a leading placeholder sigil.
func trimParamName(name string) string {
	return strings.TrimLeft(name, ":@$")
}
