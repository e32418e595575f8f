package export

import (
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/roach88/mahasiswa/internal/failure"
)

// CSVExporter writes row sets as delimiter-separated UTF-8 text.
//
// A field is quoted iff it contains the delimiter, a double quote, or a line
// break; embedded quotes are doubled. Lines end with "\n".
type CSVExporter struct {
	// Delimiter separates fields. Default ','.
	Delimiter rune
	// BufferSize is the buffer capacity in bytes. 0 sizes it from the data.
	BufferSize int

	settings settings
	lastErr  error
}

// NewCSVExporter creates a comma-delimited exporter with automatic buffer sizing.
func NewCSVExporter(opts ...Option) *CSVExporter {
	return &CSVExporter{
		Delimiter: ',',
		settings:  newSettings(opts),
	}
}

// ExportData writes rows to the file at path, replacing it.
//
// Returns CONFIG_ERROR for an empty path or invalid settings, NO_DATA for an
// empty row set, and SINK_UNAVAILABLE when the file cannot be created or
// written. Validation happens before the file is created, so a rejected
// export leaves nothing behind.
func (e *CSVExporter) ExportData(path string, rows [][]string) error {
	return e.exportFile(path, nil, rows)
}

// ExportDataWithHeaders is ExportData with a header line first.
// The header alone does not count as data.
func (e *CSVExporter) ExportDataWithHeaders(path string, headers []string, rows [][]string) error {
	return e.exportFile(path, headers, rows)
}

// WriteData streams rows to w.
func (e *CSVExporter) WriteData(w io.Writer, rows [][]string) error {
	return e.exportWriter(w, nil, rows)
}

// WriteDataWithHeaders streams a header line and rows to w.
func (e *CSVExporter) WriteDataWithHeaders(w io.Writer, headers []string, rows [][]string) error {
	return e.exportWriter(w, headers, rows)
}

// LastError returns the failure of the most recent export, or nil if it
// succeeded.
func (e *CSVExporter) LastError() error {
	return e.lastErr
}

func (e *CSVExporter) exportFile(path string, headers []string, rows [][]string) error {
	const op = "export_csv"
	id := e.settings.ids.Generate()

	if strings.TrimSpace(path) == "" {
		return e.fail(id, failure.New(failure.KindConfigError, op, "file path is not set"))
	}
	all, fe := e.prepare(op, headers, rows)
	if fe != nil {
		return e.fail(id, fe)
	}

	f, err := os.Create(path)
	if err != nil {
		return e.fail(id, failure.Wrap(failure.KindSinkUnavailable, op, "cannot open file for writing", err).
			WithDetail("path", path))
	}

	written, flushes, fe := e.write(op, f, all)
	if cerr := f.Close(); cerr != nil && fe == nil {
		fe = failure.Wrap(failure.KindSinkUnavailable, op, "cannot close file", cerr)
	}
	if fe != nil {
		_ = os.Remove(path)
		return e.fail(id, fe.WithDetail("path", path))
	}

	e.succeed(id, path, len(rows), written, flushes)
	return nil
}

func (e *CSVExporter) exportWriter(w io.Writer, headers []string, rows [][]string) error {
	const op = "write_csv"
	id := e.settings.ids.Generate()

	if w == nil {
		return e.fail(id, failure.New(failure.KindSinkUnavailable, op, "writer is nil"))
	}
	all, fe := e.prepare(op, headers, rows)
	if fe != nil {
		return e.fail(id, fe)
	}

	written, flushes, fe := e.write(op, w, all)
	if fe != nil {
		return e.fail(id, fe)
	}

	e.succeed(id, "", len(rows), written, flushes)
	return nil
}

// prepare validates settings and input and returns the lines to write,
// header first.
func (e *CSVExporter) prepare(op string, headers []string, rows [][]string) ([][]string, *failure.Error) {
	if !validDelimiter(e.Delimiter) {
		return nil, failure.Newf(failure.KindConfigError, op, "invalid delimiter %q", e.Delimiter)
	}
	if e.BufferSize < 0 {
		return nil, failure.Newf(failure.KindConfigError, op, "buffer size must not be negative, got %d", e.BufferSize)
	}
	if len(rows) == 0 {
		return nil, failure.New(failure.KindNoData, op, "no data to export")
	}
	if headers == nil {
		return rows, nil
	}

	all := make([][]string, 0, len(rows)+1)
	all = append(all, headers)
	return append(all, rows...), nil
}

func (e *CSVExporter) write(op string, w io.Writer, lines [][]string) (int64, int, *failure.Error) {
	plan := PlanBuffer(lines)
	if e.BufferSize > 0 {
		plan = FixedPlan(e.BufferSize, lines)
	}

	buf := NewRowBuffer(w, plan)
	buf.onFlush = func(n int) {
		e.settings.metrics.IncExportFlush(FormatCSV)
		e.settings.metrics.AddExportBytes(FormatCSV, n)
	}

	e.settings.logger.Debug("csv buffer planned",
		"capacity", plan.Capacity,
		"rows_per_flush", plan.RowsPerFlush,
		"avg_row_size", plan.AvgRowSize,
	)

	var line []byte
	for _, row := range lines {
		line = AppendRecord(line[:0], row, e.Delimiter)
		if err := buf.Append(line); err != nil {
			return buf.Written(), buf.Flushes(), failure.Wrap(failure.KindSinkUnavailable, op, "write failed", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return buf.Written(), buf.Flushes(), failure.Wrap(failure.KindSinkUnavailable, op, "write failed", err)
	}
	return buf.Written(), buf.Flushes(), nil
}

func (e *CSVExporter) fail(id string, fe *failure.Error) error {
	attrs := []any{
		"export_id", id,
		"op", fe.Op,
		"category", string(fe.Kind),
		"error", fe.Diagnostic(),
	}
	if d := fe.DetailString(); d != "" {
		attrs = append(attrs, "details", d)
	}
	e.settings.logger.Warn("csv export failed", attrs...)
	e.lastErr = fe
	return fe
}

func (e *CSVExporter) succeed(id, path string, rows int, written int64, flushes int) {
	e.lastErr = nil
	e.settings.metrics.AddExportRows(FormatCSV, rows)
	e.settings.logger.Info("csv export finished",
		"export_id", id,
		"path", path,
		"rows", rows,
		"bytes", written,
		"flushes", flushes,
	)
}

// AppendRecord appends one CSV line for fields, including the terminator.
// A row with no fields is an empty line.
func AppendRecord(dst []byte, fields []string, delim rune) []byte {
	for i, field := range fields {
		if i > 0 {
			dst = utf8.AppendRune(dst, delim)
		}
		dst = appendField(dst, field, delim)
	}
	return append(dst, '\n')
}

// EscapeField returns field as it appears in a CSV line.
func EscapeField(field string, delim rune) string {
	if !needsQuotes(field, delim) {
		return field
	}
	return string(appendField(nil, field, delim))
}

func appendField(dst []byte, field string, delim rune) []byte {
	if !needsQuotes(field, delim) {
		return append(dst, field...)
	}
	dst = append(dst, '"')
	for {
		i := strings.IndexByte(field, '"')
		if i < 0 {
			break
		}
		dst = append(dst, field[:i+1]...)
		dst = append(dst, '"')
		field = field[i+1:]
	}
	dst = append(dst, field...)
	return append(dst, '"')
}

func needsQuotes(field string, delim rune) bool {
	return strings.ContainsRune(field, delim) || strings.ContainsAny(field, "\"\n\r")
}

func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\n' && r != '\r' && r != utf8.RuneError && utf8.ValidRune(r)
}
