package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Database defaults
	DefaultDatabaseDir      = ".crudMahasiswa"
	DefaultDatabaseFile     = "dataMahasiswa.db"
	DefaultDatabaseDriver   = "sqlite3"
	DefaultBusyTimeout      = 5 * time.Second
	DefaultTable            = "mahasiswa"
	fallbackDatabaseRootDir = "."

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Export defaults
	DefaultCSVDelimiter   = ","
	DefaultDocumentTitle  = "Data Mahasiswa"
	DefaultDocumentLabel  = "Daftar Mahasiswa"
	DefaultDocumentChunks = 500

	// Metrics defaults
	DefaultMetricsNamespace = "mahasiswa"
)

// DefaultDatabasePath returns $HOME/.crudMahasiswa/dataMahasiswa.db, or a
// path relative to the working directory when no home directory is known.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = fallbackDatabaseRootDir
	}
	return filepath.Join(home, DefaultDatabaseDir, DefaultDatabaseFile)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDatabasePath()
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = DefaultTable
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Export.CSV.Delimiter == "" {
		cfg.Export.CSV.Delimiter = DefaultCSVDelimiter
	}
	if cfg.Export.Document.Title == "" {
		cfg.Export.Document.Title = DefaultDocumentTitle
	}
	if cfg.Export.Document.Label == "" {
		cfg.Export.Document.Label = DefaultDocumentLabel
	}
	if cfg.Export.Document.ChunkSize == 0 {
		cfg.Export.Document.ChunkSize = DefaultDocumentChunks
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
