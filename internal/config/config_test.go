package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mahasiswa/internal/failure"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mahasiswa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := Default()

	assert.Equal(t, filepath.Join("/home/tester", ".crudMahasiswa", "dataMahasiswa.db"), cfg.Database.Path)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "mahasiswa", cfg.Database.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ',', cfg.Export.CSV.DelimiterRune())
	assert.Equal(t, 500, cfg.Export.Document.ChunkSize)
	assert.Equal(t, "mahasiswa", cfg.Metrics.Namespace)
	assert.NoError(t, Validate(cfg))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/students.db"
  driver: "sqlite"
  busy_timeout: "2s"
logging:
  level: "debug"
  format: "json"
export:
  csv:
    delimiter: ";"
    buffer_size: 4096
    no_header: true
  document:
    title: "Laporan"
    chunk_size: 100
    orientation: "landscape"
    header_color: "#CCCCCC"
    uppercase_headers: true
    prefix_html: "<p>Semester 1</p>"
    suffix_html: "<p>Ketua Kelas</p>"
metrics:
  textfile: "/tmp/mahasiswa.prom"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/students.db", cfg.Database.Path)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "mahasiswa", cfg.Database.Table, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ';', cfg.Export.CSV.DelimiterRune())
	assert.Equal(t, 4096, cfg.Export.CSV.BufferSize)
	assert.True(t, cfg.Export.CSV.NoHeader)
	assert.Equal(t, "Laporan", cfg.Export.Document.Title)
	assert.Equal(t, DefaultDocumentLabel, cfg.Export.Document.Label)
	assert.Equal(t, 100, cfg.Export.Document.ChunkSize)
	assert.Equal(t, "landscape", cfg.Export.Document.Orientation)
	assert.True(t, cfg.Export.Document.UppercaseHeaders)
	assert.Equal(t, "<p>Semester 1</p>", cfg.Export.Document.PrefixHTML)
	assert.Equal(t, "<p>Ketua Kelas</p>", cfg.Export.Document.SuffixHTML)
	assert.Equal(t, "/tmp/mahasiswa.prom", cfg.Metrics.Textfile)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/from-file.db"
export:
  csv:
    delimiter: ";"
`)
	t.Setenv(EnvDatabasePath, "/tmp/from-env.db")
	t.Setenv(EnvDatabaseBusyTimeout, "250ms")
	t.Setenv(EnvCSVDelimiter, "|")
	t.Setenv(EnvDocumentChunkSize, "42")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.BusyTimeout)
	assert.Equal(t, '|', cfg.Export.CSV.DelimiterRune())
	assert.Equal(t, 42, cfg.Export.Document.ChunkSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "malformed yaml", content: "database: [unclosed"},
		{name: "unknown key", content: "database:\n  pth: /tmp/x.db\n"},
		{name: "bad driver", content: "database:\n  driver: postgres\n"},
		{name: "bad table", content: "database:\n  table: \"students; DROP\"\n"},
		{name: "bad log format", content: "logging:\n  format: xml\n"},
		{name: "two-character delimiter", content: "export:\n  csv:\n    delimiter: \";;\"\n"},
		{name: "quote delimiter", content: "export:\n  csv:\n    delimiter: '\"'\n"},
		{name: "buffer over ceiling", content: "export:\n  csv:\n    buffer_size: 2000000\n"},
		{name: "negative chunk size", content: "export:\n  document:\n    chunk_size: -5\n"},
		{name: "bad colour", content: "export:\n  document:\n    zebra_odd: grey\n"},
		{name: "bad env duration", env: map[string]string{EnvDatabaseBusyTimeout: "soon"}},
		{name: "bad env int", env: map[string]string{EnvCSVBufferSize: "big"}},
		{name: "env breaks validation", env: map[string]string{EnvDatabaseDriver: "mysql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.content != "" {
				path = writeConfig(t, tt.content)
			}

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindConfigError))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindConfigError))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsEveryFieldByYAMLPath(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	cfg.Logging.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 2)
	assert.Equal(t, "database.driver", verr.Errors[0].Field)
	assert.Contains(t, verr.Errors[0].Message, `"oracle"`)
	assert.Equal(t, "logging.level", verr.Errors[1].Field)
	assert.Contains(t, err.Error(), "2 invalid fields")
}

func TestCSVConfig_DelimiterRune(t *testing.T) {
	assert.Equal(t, '\t', CSVConfig{Delimiter: "\t"}.DelimiterRune())
	assert.Equal(t, '§', CSVConfig{Delimiter: "§"}.DelimiterRune())
}
