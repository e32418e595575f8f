package querysql

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mahasiswa/internal/failure"
)

// UpdatePrefix is prepended to column names to form SET-side placeholders.
const UpdatePrefix = "upd_"

// identPattern restricts table and column names. Names must start with a letter
// because they double as placeholder names and database/sql rejects named
// arguments that do not.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateIdentifier checks that name is safe to write into statement text.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must start with a letter and contain only letters, digits, and underscores", name)
	}
	return nil
}

// Insert builds INSERT INTO table (c1, c2, ...) VALUES (:c1, :c2, ...).
// Requires at least one field.
func Insert(table string, fields Fields) (Statement, error) {
	const op = "insert"

	if err := checkTable(op, table); err != nil {
		return Statement{}, err
	}
	if len(fields) == 0 {
		return Statement{}, invalid(op, table, "field list is empty")
	}
	if err := checkFields(op, table, fields); err != nil {
		return Statement{}, err
	}

	cols := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
		placeholders[i] = ":" + f.Column
		args[i] = sql.Named(f.Column, bindValue(f.Value))
	}

	text := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	return Statement{SQL: text, Args: args}, nil
}

// Select builds SELECT <columns|*> FROM table [WHERE filter] [ORDER BY col ASC].
// No WHERE clause is emitted for an empty filter.
func Select(spec SelectSpec) (Statement, error) {
	const op = "select"

	if err := checkTable(op, spec.Table); err != nil {
		return Statement{}, err
	}
	projection, err := compileProjection(op, spec.Table, spec.Columns)
	if err != nil {
		return Statement{}, err
	}
	where, args, err := compileWhere(op, spec.Table, spec.Filter, spec.Params, nil)
	if err != nil {
		return Statement{}, err
	}

	var orderBy string
	if spec.OrderBy != "" {
		if err := ValidateIdentifier(spec.OrderBy); err != nil {
			return Statement{}, invalid(op, spec.Table, err.Error())
		}
		orderBy = " ORDER BY " + spec.OrderBy + " ASC"
	}

	text := fmt.Sprintf("SELECT %s FROM %s%s%s", projection, spec.Table, where, orderBy)
	return Statement{SQL: text, Args: args}, nil
}

// Count builds SELECT COUNT(*) FROM table [WHERE filter] for the same spec a
// Select would use. Projection and ordering are ignored.
func Count(spec SelectSpec) (Statement, error) {
	const op = "count"

	if err := checkTable(op, spec.Table); err != nil {
		return Statement{}, err
	}
	where, args, err := compileWhere(op, spec.Table, spec.Filter, spec.Params, nil)
	if err != nil {
		return Statement{}, err
	}

	text := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.Table, where)
	return Statement{SQL: text, Args: args}, nil
}

// Update builds UPDATE table SET c = :upd_c, ... WHERE filter.
// Both fields and filter are required; an empty filter would touch every row.
func Update(table string, fields Fields, filter string, params Params) (Statement, error) {
	const op = "update"

	if err := checkTable(op, table); err != nil {
		return Statement{}, err
	}
	if len(fields) == 0 {
		return Statement{}, invalid(op, table, "field list is empty")
	}
	if strings.TrimSpace(filter) == "" {
		return Statement{}, invalid(op, table, "filter is empty; refusing to update every row")
	}
	if err := checkFields(op, table, fields); err != nil {
		return Statement{}, err
	}

	reserved := make(map[string]bool, len(fields))
	sets := make([]string, len(fields))
	args := make([]any, 0, len(fields)+len(params))
	for i, f := range fields {
		name := UpdatePrefix + f.Column
		reserved[name] = true
		sets[i] = fmt.Sprintf("%s = :%s", f.Column, name)
		args = append(args, sql.Named(name, bindValue(f.Value)))
	}

	where, whereArgs, err := compileWhere(op, table, filter, params, reserved)
	if err != nil {
		return Statement{}, err
	}
	args = append(args, whereArgs...)

	text := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ", "), where)
	return Statement{SQL: text, Args: args}, nil
}

// Delete builds DELETE FROM table WHERE filter. The filter is required.
func Delete(table string, filter string, params Params) (Statement, error) {
	const op = "delete"

	if err := checkTable(op, table); err != nil {
		return Statement{}, err
	}
	if strings.TrimSpace(filter) == "" {
		return Statement{}, invalid(op, table, "filter is empty; refusing to delete every row")
	}

	where, args, err := compileWhere(op, table, filter, params, nil)
	if err != nil {
		return Statement{}, err
	}

	text := fmt.Sprintf("DELETE FROM %s%s", table, where)
	return Statement{SQL: text, Args: args}, nil
}

// compileProjection converts a column list to a SELECT list; empty means "*".
func compileProjection(op, table string, columns []string) (string, error) {
	if len(columns) == 0 {
		return "*", nil
	}
	for _, c := range columns {
		if err := ValidateIdentifier(c); err != nil {
			return "", invalid(op, table, err.Error())
		}
	}
	return strings.Join(columns, ", "), nil
}

// compileWhere returns " WHERE <filter>" and the arguments its placeholders
// reference. The filter text is kept verbatim. Placeholders listed in reserved
// belong to the SET clause and may not appear in the filter.
func compileWhere(op, table, filter string, params Params, reserved map[string]bool) (string, []any, error) {
	if strings.TrimSpace(filter) == "" {
		return "", nil, nil
	}

	names, err := scanTemplate(filter)
	if err != nil {
		return "", nil, invalid(op, table, "filter: "+err.Error())
	}

	lookup, err := normalizeParams(params)
	if err != nil {
		return "", nil, invalid(op, table, err.Error())
	}

	args := make([]any, 0, len(names))
	for _, name := range names {
		if reserved[name] {
			return "", nil, invalid(op, table, fmt.Sprintf("filter placeholder :%s collides with a SET placeholder", name))
		}
		v, ok := lookup[name]
		if !ok {
			return "", nil, invalid(op, table, fmt.Sprintf("filter placeholder :%s has no parameter", name))
		}
		args = append(args, sql.Named(name, bindValue(v)))
	}

	if strings.Contains(filter, "--") {
		// A trailing line comment must not swallow ORDER BY.
		filter += "\n"
	}
	return " WHERE " + filter, args, nil
}

// normalizeParams strips placeholder sigils from parameter keys.
func normalizeParams(params Params) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		name := trimParamName(k)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("parameter %q given more than once", name)
		}
		out[name] = v
	}
	return out, nil
}

func checkTable(op, table string) error {
	if err := ValidateIdentifier(table); err != nil {
		return invalid(op, table, "table: "+err.Error())
	}
	return nil
}

func checkFields(op, table string, fields Fields) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if err := ValidateIdentifier(f.Column); err != nil {
			return invalid(op, table, err.Error())
		}
		if seen[f.Column] {
			return invalid(op, table, fmt.Sprintf("column %q listed more than once", f.Column))
		}
		seen[f.Column] = true
	}
	return nil
}

// bindValue normalizes text to NFC so visually identical input compares equal
// in the store. Other values pass through.
func bindValue(v any) any {
	if s, ok := v.(string); ok {
		return norm.NFC.String(s)
	}
	return v
}

func invalid(op, table, message string) *failure.Error {
	return failure.New(failure.KindInvalidInput, op, message).WithTable(table)
}
