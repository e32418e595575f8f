package export

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/mahasiswa/internal/failure"
)

// Document defaults.
const (
	DefaultChunkSize   = 500
	DefaultDateFormat  = "02 January 2006, 15:04:05"
	DefaultPageSize    = "A4"
	DefaultOrientation = "portrait"
	DefaultHeaderColor = "#E0E0E0"
	DefaultZebraEven   = "#FFFFFF"
	DefaultZebraOdd    = "#F0F0F0"
)

// DefaultColumnWidths is the percentage layout for four-column tables.
var DefaultColumnWidths = []int{10, 35, 25, 30}

// PagedConfig describes the document produced by a PagedExporter.
type PagedConfig struct {
	Title   string
	Label   string
	Headers []string `validate:"required,min=1"`

	// ChunkSize is the number of rows per page section. 0 means DefaultChunkSize.
	ChunkSize int `validate:"gte=0"`
	// ColumnWidths are percentages, one per header. Empty means
	// DefaultColumnWidths for four columns and an even split otherwise.
	ColumnWidths []int `validate:"omitempty,dive,gt=0,lte=100"`

	// DateFormat is a time layout for the generated timestamp.
	DateFormat    string
	OmitTimestamp bool

	PageSize    string `validate:"omitempty,oneof=A3 A4 A5 Letter Legal"`
	Orientation string `validate:"omitempty,oneof=portrait landscape"`

	// PrefixHTML and SuffixHTML are trusted markup written verbatim right
	// after <body> and right before </body>. Suffix is skipped on abort.
	PrefixHTML string
	SuffixHTML string

	HeaderColor      string `validate:"omitempty,hexcolor"`
	ZebraEven        string `validate:"omitempty,hexcolor"`
	ZebraOdd         string `validate:"omitempty,hexcolor"`
	UppercaseHeaders bool
}

var validate = validator.New()

// normalize validates cfg and fills in defaults.
func (cfg PagedConfig) normalize() (PagedConfig, error) {
	if err := validate.Struct(cfg); err != nil {
		return cfg, err
	}

	cfg.Headers = append([]string(nil), cfg.Headers...)
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	switch {
	case len(cfg.ColumnWidths) == 0 && len(cfg.Headers) == len(DefaultColumnWidths):
		cfg.ColumnWidths = append([]int(nil), DefaultColumnWidths...)
	case len(cfg.ColumnWidths) == 0:
		cfg.ColumnWidths = make([]int, len(cfg.Headers))
		for i := range cfg.ColumnWidths {
			cfg.ColumnWidths[i] = 100 / len(cfg.Headers)
		}
	case len(cfg.ColumnWidths) != len(cfg.Headers):
		return cfg, failure.Newf(failure.KindConfigError, "new_document",
			"%d column widths for %d headers", len(cfg.ColumnWidths), len(cfg.Headers))
	default:
		cfg.ColumnWidths = append([]int(nil), cfg.ColumnWidths...)
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	if cfg.PageSize == "" {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Orientation == "" {
		cfg.Orientation = DefaultOrientation
	}
	if cfg.HeaderColor == "" {
		cfg.HeaderColor = DefaultHeaderColor
	}
	if cfg.ZebraEven == "" {
		cfg.ZebraEven = DefaultZebraEven
	}
	if cfg.ZebraOdd == "" {
		cfg.ZebraOdd = DefaultZebraOdd
	}
	return cfg, nil
}

// Stats counts the work done by the current or most recent export.
type Stats struct {
	RowsWritten  int
	AutoFlushes  int
	FinalFlushes int
	Sections     int
	Bytes        int64
	Aborted      bool
}

// PagedExporter streams rows into a paginated HTML document.
//
// State machine: Closed -> Open(first chunk) -> Open(later chunks)* -> Closed.
// Each chunk is laid out when its first row arrives; the first chunk also
// gets the title and the generated-timestamp label. Every ChunkSize rows the
// chunk is rendered as one page section and a fresh chunk is started.
type PagedExporter struct {
	cfg      PagedConfig
	settings settings

	sink   *countingWriter
	closer io.Closer
	path   string
	id     string

	doc         *chunkDocument
	open        bool
	firstChunk  bool
	rowsInChunk int
	stats       Stats
}

// NewPagedExporter validates cfg and returns a closed exporter.
// Returns CONFIG_ERROR when cfg is invalid.
func NewPagedExporter(cfg PagedConfig, opts ...Option) (*PagedExporter, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		if failure.KindOf(err) != "" {
			return nil, err
		}
		return nil, failure.Wrap(failure.KindConfigError, "new_document", "invalid document config", err)
	}
	return &PagedExporter{
		cfg:      normalized,
		settings: newSettings(opts),
	}, nil
}

// Config returns the normalized configuration.
func (e *PagedExporter) Config() PagedConfig {
	return e.cfg
}

// Open creates the file at path and writes the document prologue.
// Returns SINK_UNAVAILABLE if the file cannot be prepared.
func (e *PagedExporter) Open(path string) error {
	const op = "open_document"
	if strings.TrimSpace(path) == "" {
		return e.logFailure(failure.New(failure.KindConfigError, op, "file path is not set"))
	}
	e.closeStale()

	f, err := os.Create(path)
	if err != nil {
		return e.logFailure(failure.Wrap(failure.KindSinkUnavailable, op, "cannot open file for writing", err).
			WithDetail("path", path))
	}
	if fe := e.start(op, f, f, path); fe != nil {
		_ = f.Close()
		return fe
	}
	return nil
}

// OpenWriter starts an export into w. w is not closed by Close.
func (e *PagedExporter) OpenWriter(w io.Writer) error {
	const op = "open_document"
	if w == nil {
		return e.logFailure(failure.New(failure.KindSinkUnavailable, op, "writer is nil"))
	}
	e.closeStale()

	if fe := e.start(op, w, nil, ""); fe != nil {
		return fe
	}
	return nil
}

// closeStale finishes an export left open by a previous Open.
func (e *PagedExporter) closeStale() {
	if !e.open {
		return
	}
	e.settings.logger.Warn("export reopened before close; finishing previous export",
		"export_id", e.id, "rows", e.stats.RowsWritten)
	_ = e.Close()
}

func (e *PagedExporter) start(op string, w io.Writer, closer io.Closer, path string) *failure.Error {
	e.id = e.settings.ids.Generate()
	e.sink = &countingWriter{w: w}
	e.closer = closer
	e.path = path
	e.stats = Stats{}

	if err := writePrologue(e.sink, &e.cfg); err != nil {
		e.sink, e.closer = nil, nil
		return e.logFailure(failure.Wrap(failure.KindSinkUnavailable, op, "cannot write document prologue", err))
	}

	e.doc = newChunkDocument(0)
	e.firstChunk = true
	e.rowsInChunk = 0
	e.open = true

	e.settings.logger.Debug("document export opened",
		"export_id", e.id,
		"path", path,
		"chunk_size", e.cfg.ChunkSize,
	)
	return nil
}

// IsOpen reports whether rows can be written.
func (e *PagedExporter) IsOpen() bool {
	return e.open
}

// WriteRow appends one row to the current chunk.
//
// Returns EXPORT_NOT_OPEN when no export is open. If the chunk's table
// structure is missing the export is aborted: the error is EXPORT_ABORTED and
// later writes are rejected.
func (e *PagedExporter) WriteRow(fields []string) error {
	const op = "write_row"
	if !e.open {
		return e.logFailure(failure.New(failure.KindExportNotOpen, op, "cannot write row: export is not open"))
	}

	if e.rowsInChunk == 0 {
		generated := ""
		if e.firstChunk && !e.cfg.OmitTimestamp {
			generated = e.settings.now().Format(e.cfg.DateFormat)
		}
		e.doc.layout(&e.cfg, e.firstChunk, generated)
		e.firstChunk = false
	}

	body := e.doc.body()
	if body == nil {
		return e.abort(failure.New(failure.KindExportAborted, op, "table not found in document chunk").
			WithDetail("chunk", strconv.Itoa(e.stats.Sections)))
	}

	class := "even"
	if e.stats.RowsWritten%2 == 1 {
		class = "odd"
	}
	appendRow(body, fields, len(e.cfg.Headers), class)
	e.stats.RowsWritten++
	e.rowsInChunk++

	if e.rowsInChunk == e.cfg.ChunkSize {
		if fe := e.flush(op); fe != nil {
			return e.abort(fe)
		}
		e.stats.AutoFlushes++
	}
	return nil
}

// Close flushes a partial final chunk, writes the epilogue and releases the
// sink. Closing a closed exporter is a logged no-op.
func (e *PagedExporter) Close() error {
	const op = "close_document"
	if !e.open {
		e.settings.logger.Warn("export stream is already closed", "export_id", e.id)
		return nil
	}

	var fe *failure.Error
	if e.rowsInChunk > 0 {
		if fe = e.flush(op); fe == nil {
			e.stats.FinalFlushes++
		}
	}
	if fe == nil && e.cfg.SuffixHTML != "" {
		if _, err := io.WriteString(e.sink, e.cfg.SuffixHTML); err != nil {
			fe = failure.Wrap(failure.KindSinkUnavailable, op, "cannot write document suffix", err)
		}
	}
	if err := writeEpilogue(e.sink); err != nil && fe == nil {
		fe = failure.Wrap(failure.KindSinkUnavailable, op, "cannot write document epilogue", err)
	}
	if err := e.release(); err != nil && fe == nil {
		fe = failure.Wrap(failure.KindSinkUnavailable, op, "cannot close document", err)
	}

	e.settings.metrics.AddExportRows(FormatDocument, e.stats.RowsWritten)
	if fe != nil {
		return e.logFailure(fe)
	}

	e.settings.logger.Info("document export finished",
		"export_id", e.id,
		"path", e.path,
		"rows", e.stats.RowsWritten,
		"sections", e.stats.Sections,
		"bytes", e.stats.Bytes,
	)
	return nil
}

// Stats returns counters for the current or most recent export.
func (e *PagedExporter) Stats() Stats {
	return e.stats
}

// flush renders the current chunk and replaces it with a fresh one.
func (e *PagedExporter) flush(op string) *failure.Error {
	rows := e.rowsInChunk
	before := e.sink.n

	err := e.doc.render(e.sink)
	e.stats.Bytes = e.sink.n
	if err != nil {
		return failure.Wrap(failure.KindSinkUnavailable, op, "cannot write document chunk", err).
			WithDetail("chunk", strconv.Itoa(e.stats.Sections))
	}

	e.stats.Sections++
	e.doc = newChunkDocument(e.stats.Sections)
	e.rowsInChunk = 0

	e.settings.metrics.IncExportFlush(FormatDocument)
	e.settings.metrics.AddExportBytes(FormatDocument, int(e.sink.n-before))
	e.settings.logger.Debug("flushed chunk",
		"export_id", e.id,
		"chunk", e.stats.Sections,
		"rows", rows,
	)
	return nil
}

// abort ends the export after a structural or sink failure. Sections already
// written stay in the artifact.
func (e *PagedExporter) abort(fe *failure.Error) error {
	e.stats.Aborted = true
	_ = writeEpilogue(e.sink)
	_ = e.release()

	e.settings.logger.Error("document export aborted",
		"export_id", e.id,
		"op", fe.Op,
		"category", string(fe.Kind),
		"error", fe.Diagnostic(),
		"rows", e.stats.RowsWritten,
	)
	return fe
}

// release drops the chunk and closes the sink.
func (e *PagedExporter) release() error {
	e.open = false
	e.doc = nil
	e.stats.Bytes = e.sink.n
	closer := e.closer
	e.closer = nil
	if closer != nil {
		return closer.Close()
	}
	return nil
}

func (e *PagedExporter) logFailure(fe *failure.Error) *failure.Error {
	attrs := []any{
		"export_id", e.id,
		"op", fe.Op,
		"category", string(fe.Kind),
		"error", fe.Diagnostic(),
	}
	if d := fe.DetailString(); d != "" {
		attrs = append(attrs, "details", d)
	}
	e.settings.logger.Warn("document export failed", attrs...)
	return fe
}

// countingWriter tracks bytes accepted by the sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
