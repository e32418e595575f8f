// Package querysql builds parameterized SQLite statements from runtime-supplied
// table names, ordered column/value lists, and named-placeholder filter templates.
//
// Every value travels as a bound parameter; nothing a caller supplies as a value
// is ever written into statement text. Identifiers (tables, columns) cannot be
// bound, so they are validated against a strict pattern instead.
//
// Filter templates use SQLite named placeholders:
//
//	stmt, err := querysql.Update("mahasiswa",
//		querysql.Fields{querysql.F("kelas", "B")},
//		"id = :target_id",
//		querysql.Params{"target_id": 7},
//	)
//	// stmt.SQL  == "UPDATE mahasiswa SET kelas = :upd_kelas WHERE id = :target_id"
//	// stmt.Args == [sql.Named("upd_kelas", "B"), sql.Named("target_id", 7)]
//
// SET placeholders carry the reserved upd_ prefix so a filter may reference the
// same column name it updates. Parameters that the template never references
// are ignored.
//
// The package does no I/O.
package querysql
