// Package store provides the SQLite-backed record store for student records.
//
// The store exposes generic Insert/SelectRows/Update/Delete operations over any
// table whose columns are a subset of {id, nama, npm, kelas}. Statements are
// built by internal/querysql, so every value is a bound parameter.
//
// # Failure Semantics
//
// No operation panics. Each returns a sentinel (-1 id, false, empty slice)
// together with a *failure.Error:
//   - CONNECTION_UNAVAILABLE: store closed or unreachable; no statement attempted
//   - INVALID_INPUT: empty field list, empty filter on update/delete, bad identifier
//   - STATEMENT_FAILED: the store rejected the statement (constraint violations too)
//
// Every failure is logged with op, table, category and the driver's text.
//
// # Reads
//
// SelectRows runs a COUNT with the same filter first and sizes the result slice
// from it. A failed count returns an empty slice without running the data
// query; so does a count of zero.
//
// Result columns are matched to Student fields by exact name, once per query.
// Columns that are not part of the schema are read and dropped.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - busy_timeout: wait for locks (default 5s)
//   - foreign_keys=ON
//   - one open connection: SQLite has a single writer
//
// Two drivers are supported: "sqlite3" (github.com/mattn/go-sqlite3, CGO) and
// "sqlite" (modernc.org/sqlite, pure Go).
package store
