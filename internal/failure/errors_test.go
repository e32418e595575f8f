package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "kind only",
			err:  &Error{Kind: KindNoData},
			want: "NO_DATA",
		},
		{
			name: "op and message",
			err:  New(KindInvalidInput, "update", "filter is empty"),
			want: "INVALID_INPUT [update]: filter is empty",
		},
		{
			name: "op, table, cause",
			err:  Wrap(KindStatementFailed, "insert", "statement rejected", errors.New("UNIQUE constraint failed")).WithTable("mahasiswa"),
			want: "STATEMENT_FAILED [insert mahasiswa]: statement rejected: UNIQUE constraint failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIs_WrappedError(t *testing.T) {
	base := Wrap(KindSinkUnavailable, "export_csv", "cannot open file", fs.ErrPermission)
	wrapped := fmt.Errorf("export failed: %w", base)

	assert.True(t, Is(wrapped, KindSinkUnavailable))
	assert.False(t, Is(wrapped, KindNoData))
	assert.True(t, errors.Is(wrapped, fs.ErrPermission))

	var fe *Error
	require.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, "export_csv", fe.Op)
}

func TestIs_NilAndForeignErrors(t *testing.T) {
	assert.False(t, Is(nil, KindNoData))
	assert.False(t, Is(errors.New("plain"), KindNoData))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestError_Details(t *testing.T) {
	err := New(KindStatementFailed, "insert", "rejected").
		WithDetail("sqlite_code", "2067").
		WithDetail("constraint", "unique")

	assert.Equal(t, "constraint=unique sqlite_code=2067", err.DetailString())
	assert.Equal(t, "", New(KindNoData, "x", "y").DetailString())
}

func TestError_Diagnostic(t *testing.T) {
	assert.Equal(t, "boom", Wrap(KindStatementFailed, "delete", "rejected", errors.New("boom")).Diagnostic())
	assert.Equal(t, "rejected", New(KindStatementFailed, "delete", "rejected").Diagnostic())
}
