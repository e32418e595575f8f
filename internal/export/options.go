package export

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/mahasiswa/internal/logging"
	"github.com/roach88/mahasiswa/internal/metrics"
)

// Metric label values for the two artifact formats.
const (
	FormatCSV      = "csv"
	FormatDocument = "document"
)

// IDGenerator names one export run in log output.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 export IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures the ambient collaborators of an exporter.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	ids     IDGenerator
	now     func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		ids: UUIDv7Generator{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics records rows, flushes and bytes. A nil Metrics disables recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithIDGenerator replaces the export ID source.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithClock replaces the wall clock used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
