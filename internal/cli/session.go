package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/mahasiswa/internal/querysql"
	"github.com/roach88/mahasiswa/internal/store"
)

// openStore opens the configured database. Callers close it.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, store.Options{
		Path:        o.Config.Database.Path,
		Driver:      o.Config.Database.Driver,
		BusyTimeout: o.Config.Database.BusyTimeout,
		Logger:      o.Logger,
		Metrics:     o.Metrics,
	})
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open database", err)
	}
	return st, nil
}

// table returns the configured student table.
func (o *RootOptions) table() string {
	return o.Config.Database.Table
}

// parseParams turns repeated key=value flags into filter parameters.
func parseParams(pairs []string) (querysql.Params, error) {
	params := make(querysql.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --param %q: expected name=value", pair))
		}
		params[key] = value
	}
	return params, nil
}

// parseColumns splits a comma-separated column list. Empty means all columns.
func parseColumns(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			columns = append(columns, p)
		}
	}
	return columns
}

// QueryFlags are the row-selection flags shared by list and export.
type QueryFlags struct {
	Where   string
	Params  []string
	Columns string
	OrderBy string
}

// spec builds the select spec for table.
func (q *QueryFlags) spec(table string) (querysql.SelectSpec, error) {
	params, err := parseParams(q.Params)
	if err != nil {
		return querysql.SelectSpec{}, err
	}
	return querysql.SelectSpec{
		Table:   table,
		Columns: parseColumns(q.Columns),
		Filter:  q.Where,
		Params:  params,
		OrderBy: q.OrderBy,
	}, nil
}

// headers returns the column names of the rows spec selects.
func headers(spec querysql.SelectSpec) []string {
	if len(spec.Columns) == 0 {
		return store.Columns
	}
	return spec.Columns
}
