package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/mahasiswa/internal/failure"
	"github.com/roach88/mahasiswa/internal/logging"
	"github.com/roach88/mahasiswa/internal/metrics"
)

//go:embed schema.sql
var schemaSQL string

// DefaultTable is the table created by the embedded schema.
const DefaultTable = "mahasiswa"

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// Options configures Open.
type Options struct {
	// Path is the SQLite database file. ":memory:" is accepted.
	Path string

	// Driver is DriverMattn (default) or DriverModernc.
	Driver string

	// BusyTimeout is how long to wait for locks. Default: 5 seconds.
	BusyTimeout time.Duration

	// Logger receives operation failures. Default: slog.Default().
	Logger *slog.Logger

	// Metrics counts operations. Optional.
	Metrics *metrics.Metrics
}

// Store is the record store. It exclusively owns its connection.
type Store struct {
	db      *sql.DB
	path    string
	driver  string
	logger  *slog.Logger
	metrics *metrics.Metrics
	closed  atomic.Bool

	// trace, when set, sees every statement before it runs.
	trace func(op, query string)
}

// Open creates or opens the SQLite database at opts.Path, applies pragmas, and
// creates the schema if it does not exist. Safe to call repeatedly on the same
// file.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if opts.Driver == "" {
		opts.Driver = DriverMattn
	}
	if opts.Driver != DriverMattn && opts.Driver != DriverModernc {
		return nil, fmt.Errorf("unsupported driver %q: must be %q or %q", opts.Driver, DriverMattn, DriverModernc)
	}
	if opts.BusyTimeout == 0 {
		opts.BusyTimeout = 5 * time.Second
	}
	logger := logging.OrDefault(opts.Logger)

	isNew := false
	if !isMemoryPath(opts.Path) {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if _, err := os.Stat(opts.Path); errors.Is(err, os.ErrNotExist) {
			isNew = true
		}
	}

	db, err := sql.Open(opts.Driver, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db, opts.BusyTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if isNew {
		logger.Info("created new database", "path", opts.Path, "driver", opts.Driver)
	} else {
		logger.Debug("opened database", "path", opts.Path, "driver", opts.Driver)
	}

	return &Store{
		db:      db,
		path:    opts.Path,
		driver:  opts.Driver,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Close closes the database connection. Further operations fail with
// CONNECTION_UNAVAILABLE. Closing twice is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// IsOpen reports whether the store still holds a usable connection.
func (s *Store) IsOpen() bool {
	return s != nil && s.db != nil && !s.closed.Load()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// checkLive fails fast when the connection is gone, before any statement is
// prepared.
func (s *Store) checkLive(ctx context.Context, op, table string) *failure.Error {
	if !s.IsOpen() {
		return failure.New(failure.KindConnectionUnavailable, op, "store is closed").WithTable(table)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return failure.Wrap(failure.KindConnectionUnavailable, op, "store is unreachable", err).WithTable(table)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist. There is no migration step:
// an existing table is used as-is.
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file:")
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
