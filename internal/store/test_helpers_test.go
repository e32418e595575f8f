package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/mahasiswa/internal/logging"
	"github.com/roach88/mahasiswa/internal/querysql"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	return createTestStoreWithDriver(t, DriverMattn)
}

func createTestStoreWithDriver(t *testing.T, driver string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), Options{
		Path:   path,
		Driver: driver,
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// studentFields builds the field list for one student row.
func studentFields(nama, npm, kelas string) querysql.Fields {
	return querysql.Fields{
		querysql.F(ColumnNama, nama),
		querysql.F(ColumnNPM, npm),
		querysql.F(ColumnKelas, kelas),
	}
}

// seedStudents inserts the three-row fixture used across tests.
func seedStudents(t *testing.T, s *Store) []int64 {
	t.Helper()
	rows := [][3]string{
		{"Ann", "001", "A"},
		{"Bo", "002", "B"},
		{"Cy", "003", "A"},
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, err := s.Insert(context.Background(), DefaultTable, studentFields(r[0], r[1], r[2]))
		if err != nil {
			t.Fatalf("Insert(%s) failed: %v", r[0], err)
		}
		ids = append(ids, id)
	}
	return ids
}

// statementLog records statements seen by the store's trace hook.
type statementLog struct {
	entries []string
}

func (l *statementLog) record(op, query string) {
	l.entries = append(l.entries, op+": "+query)
}
