package store

import (
	"errors"
	"strconv"

	sqlite3 "github.com/mattn/go-sqlite3"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/roach88/mahasiswa/internal/failure"
)

// statementFailed wraps a driver error as STATEMENT_FAILED and records the
// SQLite result code and, for constraint violations, which constraint fired.
// Both drivers report the same extended result codes.
func statementFailed(op, table string, err error) *failure.Error {
	fe := failure.Wrap(failure.KindStatementFailed, op, "statement rejected", err).WithTable(table)

	code, ok := sqliteCode(err)
	if !ok {
		return fe
	}
	fe.WithDetail("sqlite_code", strconv.Itoa(code))
	if c := constraintName(code); c != "" {
		fe.WithDetail("constraint", c)
	}
	return fe
}

// sqliteCode extracts the extended result code from either driver's error type.
func sqliteCode(err error) (int, bool) {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return int(mattnErr.ExtendedCode), true
	}
	var modernErr *moderncsqlite.Error
	if errors.As(err, &modernErr) {
		return modernErr.Code(), true
	}
	return 0, false
}

func constraintName(code int) string {
	switch code {
	case sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
		return "unique"
	case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return "primary_key"
	case sqlitelib.SQLITE_CONSTRAINT_NOTNULL:
		return "not_null"
	case sqlitelib.SQLITE_CONSTRAINT_CHECK:
		return "check"
	case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return "foreign_key"
	}
	if code&0xff == sqlitelib.SQLITE_CONSTRAINT {
		return "constraint"
	}
	return ""
}
