// Package failure defines the error taxonomy shared by the record store and
// the exporters.
//
// No failure crosses a component boundary as a panic. Every operation returns
// its sentinel value (-1, false, an empty slice) together with an *Error whose
// Kind tells the caller what went wrong.
package failure

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind categorizes failures.
type Kind string

const (
	// KindConnectionUnavailable means the store connection is closed or unreachable.
	KindConnectionUnavailable Kind = "CONNECTION_UNAVAILABLE"

	// KindInvalidInput means a required table, field list, or filter was empty or malformed.
	KindInvalidInput Kind = "INVALID_INPUT"

	// KindStatementFailed means the store rejected a parameterized statement.
	// Constraint violations land here too.
	KindStatementFailed Kind = "STATEMENT_FAILED"

	// KindSinkUnavailable means an export destination could not be opened or written.
	KindSinkUnavailable Kind = "SINK_UNAVAILABLE"

	// KindExportNotOpen means a write or close was called out of sequence.
	KindExportNotOpen Kind = "EXPORT_NOT_OPEN"

	// KindNoData means an export was attempted on an empty row set.
	KindNoData Kind = "NO_DATA"

	// KindConfigError means an exporter was used without required configuration.
	KindConfigError Kind = "CONFIG_ERROR"

	// KindExportAborted means the in-memory document lost its structure mid-export.
	KindExportAborted Kind = "EXPORT_ABORTED"
)

// Error is a categorized failure with enough context to log it.
type Error struct {
	// Kind identifies the failure category.
	Kind Kind

	// Op names the operation that failed (insert, select, export_csv, ...).
	Op string

	// Table is the table involved, if any.
	Table string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error

	// Details carries extra diagnostics (sqlite codes, constraint names).
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(e.Op)
		if e.Table != "" {
			b.WriteString(" ")
			b.WriteString(e.Table)
		}
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic returns the underlying error text, or the message when there is no cause.
func (e *Error) Diagnostic() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// DetailString renders Details as sorted key=value pairs for logging.
func (e *Error) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Details[k]
	}
	return strings.Join(parts, " ")
}

// New creates an Error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an underlying cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// WithTable sets the table and returns the same error for chaining.
func (e *Error) WithTable(table string) *Error {
	e.Table = table
	return e
}

// WithDetail records a diagnostic key/value and returns the same error.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
// Uses errors.As to handle wrapped errors.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
