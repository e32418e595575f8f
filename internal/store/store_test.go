package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/mahasiswa/internal/logging"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".crudMahasiswa", "dataMahasiswa.db")

	s, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created under new directory: %v", err)
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Create database
	s1, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if _, err := s1.Insert(context.Background(), DefaultTable, studentFields("Ann", "001", "A")); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	s1.Close()

	// Reopen database
	s2, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM mahasiswa").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (data lost across reopen)", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Open multiple times
	for i := 0; i < 3; i++ {
		s, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(context.Background(), Options{Path: path, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		DefaultTable,
	).Scan(&name)
	if err != nil {
		t.Errorf("table %q not found after idempotent opens: %v", DefaultTable, err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// A regular file cannot be used as a directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(context.Background(), Options{
		Path:   filepath.Join(blocker, "test.db"),
		Logger: logging.Discard(),
	})
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_RejectsEmptyPathAndUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Error("expected error for empty path")
	}

	_, err := Open(context.Background(), Options{
		Path:   filepath.Join(t.TempDir(), "test.db"),
		Driver: "postgres",
	})
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestOpen_MemoryDatabase(t *testing.T) {
	s, err := Open(context.Background(), Options{Path: ":memory:", Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if !s.IsOpen() {
		t.Error("memory store should be open")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	s := createTestStore(t)

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() should be a no-op: %v", err)
	}
	if s.IsOpen() {
		t.Error("IsOpen() = true after Close()")
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragmas(t *testing.T) {
	for _, driver := range []string{DriverMattn, DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			s := createTestStoreWithDriver(t, driver)

			checks := []struct{ name, want string }{
				{"journal_mode", "wal"},
				{"synchronous", "1"}, // NORMAL
				{"busy_timeout", "5000"},
				{"foreign_keys", "1"},
			}
			for _, c := range checks {
				if err := s.verifyPragma(c.name, c.want); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestPragma_CustomBusyTimeout(t *testing.T) {
	s, err := Open(context.Background(), Options{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 1500 * time.Millisecond,
		Logger:      logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("busy_timeout", "1500"); err != nil {
		t.Error(err)
	}
}
