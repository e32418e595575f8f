package config

import (
	"time"
	"unicode/utf8"
)

// Config is the complete application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig locates the record store.
type DatabaseConfig struct {
	// Path is the SQLite file. Default: $HOME/.crudMahasiswa/dataMahasiswa.db.
	Path string `yaml:"path" validate:"required"`
	// Driver is "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
	Driver      string        `yaml:"driver" validate:"oneof=sqlite3 sqlite"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	// Table is the student table name.
	Table string `yaml:"table" validate:"required,identifier"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// ExportConfig groups the two exporters.
type ExportConfig struct {
	CSV      CSVConfig      `yaml:"csv"`
	Document DocumentConfig `yaml:"document"`
}

// CSVConfig configures the CSV exporter.
type CSVConfig struct {
	Delimiter string `yaml:"delimiter" validate:"delimiter"`
	// BufferSize in bytes. 0 sizes the buffer from the data.
	BufferSize int  `yaml:"buffer_size" validate:"gte=0,lte=1048576"`
	NoHeader   bool `yaml:"no_header"`
}

// DelimiterRune returns the delimiter as a rune.
func (c CSVConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// DocumentConfig configures the paged document exporter.
type DocumentConfig struct {
	Title            string `yaml:"title"`
	Label            string `yaml:"label"`
	ChunkSize        int    `yaml:"chunk_size" validate:"gte=0"`
	DateFormat       string `yaml:"date_format"`
	PageSize         string `yaml:"page_size" validate:"omitempty,oneof=A3 A4 A5 Letter Legal"`
	Orientation      string `yaml:"orientation" validate:"omitempty,oneof=portrait landscape"`
	HeaderColor      string `yaml:"header_color" validate:"omitempty,hexcolor"`
	ZebraEven        string `yaml:"zebra_even" validate:"omitempty,hexcolor"`
	ZebraOdd         string `yaml:"zebra_odd" validate:"omitempty,hexcolor"`
	UppercaseHeaders bool   `yaml:"uppercase_headers"`
	OmitTimestamp    bool   `yaml:"omit_timestamp"`
	// PrefixHTML and SuffixHTML are trusted markup placed before the first
	// page and after the last one.
	PrefixHTML string `yaml:"prefix_html"`
	SuffixHTML string `yaml:"suffix_html"`
}

// MetricsConfig controls the Prometheus textfile dump.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" validate:"omitempty,identifier"`
	// Textfile, when set, receives the registry in text exposition format
	// after each command.
	Textfile string `yaml:"textfile"`
}
