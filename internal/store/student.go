package store

import (
	"database/sql"
	"strconv"
)

// Column names of the student table.
const (
	ColumnID    = "id"
	ColumnNama  = "nama"
	ColumnNPM   = "npm"
	ColumnKelas = "kelas"
)

// Columns lists the student table columns in positional order.
var Columns = []string{ColumnID, ColumnNama, ColumnNPM, ColumnKelas}

// Student is one row of the student table.
type Student struct {
	ID    int64
	Nama  string
	NPM   string
	Kelas string
}

// Values returns the row as a positional tuple [id, nama, npm, kelas].
func (s Student) Values() []string {
	return []string{strconv.FormatInt(s.ID, 10), s.Nama, s.NPM, s.Kelas}
}

// slot identifies which Student field a result column feeds.
type slot int

const (
	slotUnknown slot = iota
	slotID
	slotNama
	slotNPM
	slotKelas
)

var slotsByName = map[string]slot{
	ColumnID:    slotID,
	ColumnNama:  slotNama,
	ColumnNPM:   slotNPM,
	ColumnKelas: slotKelas,
}

// resolveSlots maps result column names to Student fields by exact,
// case-sensitive equality. Resolved once per query.
func resolveSlots(columns []string) []slot {
	slots := make([]slot, len(columns))
	for i, c := range columns {
		slots[i] = slotsByName[c]
	}
	return slots
}

// rowScanner scans result rows into Students using a fixed slot layout.
type rowScanner struct {
	slots []slot
	ints  []sql.NullInt64
	texts []sql.NullString
	dest  []any
}

func newRowScanner(slots []slot) *rowScanner {
	rs := &rowScanner{
		slots: slots,
		ints:  make([]sql.NullInt64, len(slots)),
		texts: make([]sql.NullString, len(slots)),
		dest:  make([]any, len(slots)),
	}
	for i, sl := range slots {
		switch sl {
		case slotID:
			rs.dest[i] = &rs.ints[i]
		case slotNama, slotNPM, slotKelas:
			rs.dest[i] = &rs.texts[i]
		default:
			rs.dest[i] = new(any)
		}
	}
	return rs
}

// scan reads the current row. It returns the Student plus the recognised
// values as strings in result-column order.
func (rs *rowScanner) scan(rows *sql.Rows) (Student, []string, error) {
	if err := rows.Scan(rs.dest...); err != nil {
		return Student{}, nil, err
	}

	var st Student
	values := make([]string, 0, len(rs.slots))
	for i, sl := range rs.slots {
		switch sl {
		case slotID:
			st.ID = rs.ints[i].Int64
			values = append(values, strconv.FormatInt(st.ID, 10))
		case slotNama:
			st.Nama = rs.texts[i].String
			values = append(values, st.Nama)
		case slotNPM:
			st.NPM = rs.texts[i].String
			values = append(values, st.NPM)
		case slotKelas:
			st.Kelas = rs.texts[i].String
			values = append(values, st.Kelas)
		}
	}
	return st, values, nil
}
