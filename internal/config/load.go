package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mahasiswa/internal/failure"
)

// Environment variable names. Each overrides the matching YAML field.
const (
	EnvDatabasePath        = "MAHASISWA_DB_PATH"
	EnvDatabaseDriver      = "MAHASISWA_DB_DRIVER"
	EnvDatabaseBusyTimeout = "MAHASISWA_DB_BUSY_TIMEOUT"
	EnvDatabaseTable       = "MAHASISWA_DB_TABLE"
	EnvLogLevel            = "MAHASISWA_LOG_LEVEL"
	EnvLogFormat           = "MAHASISWA_LOG_FORMAT"
	EnvCSVDelimiter        = "MAHASISWA_CSV_DELIMITER"
	EnvCSVBufferSize       = "MAHASISWA_CSV_BUFFER_SIZE"
	EnvDocumentTitle       = "MAHASISWA_DOC_TITLE"
	EnvDocumentChunkSize   = "MAHASISWA_DOC_CHUNK_SIZE"
	EnvMetricsTextfile     = "MAHASISWA_METRICS_TEXTFILE"
)

const opLoad = "load_config"

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and environment overrides, then validates it.
// All failures are CONFIG_ERROR.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, failure.Wrap(failure.KindConfigError, opLoad, "cannot read configuration file", err).
				WithDetail("path", path)
		}
		if err := decode(data, cfg); err != nil {
			return nil, failure.Wrap(failure.KindConfigError, opLoad, "cannot parse configuration file", err).
				WithDetail("path", path)
		}
	}

	ApplyDefaults(cfg)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, failure.Wrap(failure.KindConfigError, opLoad, "invalid environment override", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, failure.Wrap(failure.KindConfigError, opLoad, "configuration validation failed", err)
	}

	return cfg, nil
}

// decode parses YAML strictly: unknown keys are errors. An empty document
// leaves cfg untouched.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides applies MAHASISWA_* variables. Malformed numbers and
// durations are errors rather than being ignored.
func applyEnvOverrides(cfg *Config) error {
	setString(EnvDatabasePath, &cfg.Database.Path)
	setString(EnvDatabaseDriver, &cfg.Database.Driver)
	setString(EnvDatabaseTable, &cfg.Database.Table)
	setString(EnvLogLevel, &cfg.Logging.Level)
	setString(EnvLogFormat, &cfg.Logging.Format)
	setString(EnvCSVDelimiter, &cfg.Export.CSV.Delimiter)
	setString(EnvDocumentTitle, &cfg.Export.Document.Title)
	setString(EnvMetricsTextfile, &cfg.Metrics.Textfile)

	if val := os.Getenv(EnvDatabaseBusyTimeout); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDatabaseBusyTimeout, err)
		}
		cfg.Database.BusyTimeout = d
	}
	if err := setInt(EnvCSVBufferSize, &cfg.Export.CSV.BufferSize); err != nil {
		return err
	}
	if err := setInt(EnvDocumentChunkSize, &cfg.Export.Document.ChunkSize); err != nil {
		return err
	}
	return nil
}

func setString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

func setInt(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = i
	return nil
}
