package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/mahasiswa/internal/failure"
	"github.com/roach88/mahasiswa/internal/querysql"
)

// Insert adds one row and returns its store-assigned id.
// Returns -1 and an error when the store is unavailable, fields is empty, or
// the statement is rejected (for example a duplicate nama).
func (s *Store) Insert(ctx context.Context, table string, fields querysql.Fields) (int64, error) {
	const op = "insert"
	start := time.Now()

	if fe := s.checkLive(ctx, op, table); fe != nil {
		return -1, s.fail(fe, start)
	}

	stmt, err := querysql.Insert(table, fields)
	if err != nil {
		return -1, s.fail(asFailure(op, table, err), start)
	}

	res, err := s.exec(ctx, op, stmt)
	if err != nil {
		return -1, s.fail(statementFailed(op, table, err), start)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return -1, s.fail(statementFailed(op, table, err), start)
	}

	s.succeed(op, start)
	return id, nil
}

// SelectRows returns the rows matching spec as Students, in store order (or
// spec.OrderBy). The candidate count is queried first; if that fails, or is
// zero, the data query is never run.
//
// The returned slice is never nil.
func (s *Store) SelectRows(ctx context.Context, spec querysql.SelectSpec) ([]Student, error) {
	var students []Student
	err := s.query(ctx, "select", spec,
		func(count int64) { students = make([]Student, 0, count) },
		func(st Student, _ []string) error {
			students = append(students, st)
			return nil
		},
	)
	if students == nil {
		students = []Student{}
	}
	return students, err
}

// SelectValues is SelectRows for exporters: each row is the projected
// columns rendered as strings, in projection order. An empty projection
// selects Columns explicitly, and a column outside Columns is INVALID_INPUT,
// so every row has exactly one value per selected column.
//
// The returned slice is never nil.
func (s *Store) SelectValues(ctx context.Context, spec querysql.SelectSpec) ([][]string, error) {
	const op = "select_values"
	spec, fe := valuesSpec(op, spec)
	if fe != nil {
		return [][]string{}, s.fail(fe, time.Now())
	}

	var out [][]string
	err := s.query(ctx, op, spec,
		func(count int64) { out = make([][]string, 0, count) },
		func(_ Student, values []string) error {
			out = append(out, values)
			return nil
		},
	)
	if out == nil {
		out = [][]string{}
	}
	return out, err
}

// StreamValues runs the SelectValues pipeline but hands each row to fn
// instead of collecting them, so memory does not grow with the result. It
// returns the number of rows delivered. An error from fn stops the scan and
// is returned unchanged.
func (s *Store) StreamValues(ctx context.Context, spec querysql.SelectSpec, fn func(values []string) error) (int64, error) {
	const op = "stream_values"
	spec, fe := valuesSpec(op, spec)
	if fe != nil {
		return 0, s.fail(fe, time.Now())
	}

	var n int64
	err := s.query(ctx, op, spec,
		func(int64) {},
		func(_ Student, values []string) error {
			if err := fn(values); err != nil {
				return err
			}
			n++
			return nil
		},
	)
	return n, err
}

// valuesSpec pins the projection of a values query to known student columns.
func valuesSpec(op string, spec querysql.SelectSpec) (querysql.SelectSpec, *failure.Error) {
	if len(spec.Columns) == 0 {
		spec.Columns = append([]string(nil), Columns...)
		return spec, nil
	}
	for _, c := range spec.Columns {
		if _, ok := slotsByName[c]; !ok {
			return spec, failure.Newf(failure.KindInvalidInput, op, "unknown column %q: must be one of %v", c, Columns).
				WithTable(spec.Table)
		}
	}
	return spec, nil
}

// Update applies fields to the rows matching filter. It reports true iff at
// least one row changed. An empty fields list or filter fails closed without
// touching the store.
func (s *Store) Update(ctx context.Context, table string, fields querysql.Fields, filter string, params querysql.Params) (bool, error) {
	const op = "update"
	start := time.Now()

	if fe := s.checkLive(ctx, op, table); fe != nil {
		return false, s.fail(fe, start)
	}

	stmt, err := querysql.Update(table, fields, filter, params)
	if err != nil {
		return false, s.fail(asFailure(op, table, err), start)
	}

	return s.mutate(ctx, op, table, stmt, start)
}

// Delete removes the rows matching filter. It reports true iff at least one
// row was removed. An empty filter fails closed.
func (s *Store) Delete(ctx context.Context, table string, filter string, params querysql.Params) (bool, error) {
	const op = "delete"
	start := time.Now()

	if fe := s.checkLive(ctx, op, table); fe != nil {
		return false, s.fail(fe, start)
	}

	stmt, err := querysql.Delete(table, filter, params)
	if err != nil {
		return false, s.fail(asFailure(op, table, err), start)
	}

	return s.mutate(ctx, op, table, stmt, start)
}

// Count returns the number of rows matching spec's filter.
func (s *Store) Count(ctx context.Context, spec querysql.SelectSpec) (int64, error) {
	const op = "count"
	start := time.Now()

	if fe := s.checkLive(ctx, op, spec.Table); fe != nil {
		return 0, s.fail(fe, start)
	}
	n, fe := s.count(ctx, op, spec)
	if fe != nil {
		return 0, s.fail(fe, start)
	}
	s.succeed(op, start)
	return n, nil
}

// query is the count-then-fetch pipeline behind SelectRows and SelectValues.
// reserve is called once with the pre-count; emit once per row. An emit error
// ends the scan and is returned as is.
func (s *Store) query(ctx context.Context, op string, spec querysql.SelectSpec, reserve func(int64), emit func(Student, []string) error) error {
	start := time.Now()

	if fe := s.checkLive(ctx, op, spec.Table); fe != nil {
		return s.fail(fe, start)
	}

	// Validate the data statement before counting so a bad projection is
	// reported as invalid input rather than surfacing after the count.
	stmt, err := querysql.Select(spec)
	if err != nil {
		return s.fail(asFailure(op, spec.Table, err), start)
	}

	count, fe := s.count(ctx, op, spec)
	if fe != nil {
		return s.fail(fe, start)
	}
	if count == 0 {
		s.succeed(op, start)
		return nil
	}
	reserve(count)

	s.traceStatement(op, stmt.SQL)
	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return s.fail(statementFailed(op, spec.Table, err), start)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return s.fail(statementFailed(op, spec.Table, err), start)
	}
	scanner := newRowScanner(resolveSlots(columns))

	for rows.Next() {
		st, values, err := scanner.scan(rows)
		if err != nil {
			return s.fail(statementFailed(op, spec.Table, err), start)
		}
		if err := emit(st, values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return s.fail(statementFailed(op, spec.Table, err), start)
	}

	s.succeed(op, start)
	return nil
}

// count runs the COUNT(*) companion of spec.
func (s *Store) count(ctx context.Context, op string, spec querysql.SelectSpec) (int64, *failure.Error) {
	stmt, err := querysql.Count(spec)
	if err != nil {
		return 0, asFailure(op, spec.Table, err)
	}

	s.traceStatement(op, stmt.SQL)
	var n int64
	if err := s.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&n); err != nil {
		fe := statementFailed(op, spec.Table, err)
		fe.Message = "count query rejected"
		return 0, fe
	}
	return n, nil
}

// mutate runs an UPDATE or DELETE and applies the affected-rows rule.
func (s *Store) mutate(ctx context.Context, op, table string, stmt querysql.Statement, start time.Time) (bool, error) {
	res, err := s.exec(ctx, op, stmt)
	if err != nil {
		return false, s.fail(statementFailed(op, table, err), start)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, s.fail(statementFailed(op, table, err), start)
	}

	s.succeed(op, start)
	s.logger.Debug("rows affected", "op", op, "table", table, "rows", affected)
	return affected > 0, nil
}

func (s *Store) exec(ctx context.Context, op string, stmt querysql.Statement) (sql.Result, error) {
	s.traceStatement(op, stmt.SQL)
	return s.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
}

func (s *Store) traceStatement(op, query string) {
	if s.trace != nil {
		s.trace(op, query)
	}
}

// fail logs a failure and counts it. It returns fe so callers can
// `return sentinel, s.fail(...)`.
func (s *Store) fail(fe *failure.Error, start time.Time) error {
	attrs := []any{
		"op", fe.Op,
		"table", fe.Table,
		"category", string(fe.Kind),
		"error", fe.Diagnostic(),
	}
	if d := fe.DetailString(); d != "" {
		attrs = append(attrs, "details", d)
	}
	if s == nil {
		slog.Warn("store operation failed", attrs...)
		return fe
	}
	s.logger.Warn("store operation failed", attrs...)
	s.metrics.ObserveStatement(fe.Op, string(fe.Kind), time.Since(start))
	return fe
}

func (s *Store) succeed(op string, start time.Time) {
	s.metrics.ObserveStatement(op, "ok", time.Since(start))
}

// asFailure re-labels a builder error with the store operation name.
func asFailure(op, table string, err error) *failure.Error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		out := *fe
		out.Op = op
		out.Table = table
		return &out
	}
	return failure.Wrap(failure.KindInvalidInput, op, "cannot build statement", err).WithTable(table)
}
