package querysql

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mahasiswa/internal/failure"
)

func TestInsert_PlaceholderPerColumnInOrder(t *testing.T) {
	stmt, err := Insert("mahasiswa", Fields{
		F("nama", "Ann"),
		F("npm", "001"),
		F("kelas", "A"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO mahasiswa (nama, npm, kelas) VALUES (:nama, :npm, :kelas)", stmt.SQL)
	assert.Equal(t, []any{
		sql.Named("nama", "Ann"),
		sql.Named("npm", "001"),
		sql.Named("kelas", "A"),
	}, stmt.Args)
}

func TestInsert_OrderFollowsSlice(t *testing.T) {
	stmt, err := Insert("mahasiswa", Fields{F("kelas", "A"), F("nama", "Ann")})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO mahasiswa (kelas, nama) VALUES (:kelas, :nama)", stmt.SQL)
}

func TestInsert_RejectsEmptyAndDuplicateFields(t *testing.T) {
	_, err := Insert("mahasiswa", nil)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindInvalidInput))

	_, err = Insert("mahasiswa", Fields{F("nama", "a"), F("nama", "b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestSelect_AllColumnsNoFilter(t *testing.T) {
	stmt, err := Select(SelectSpec{Table: "mahasiswa"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM mahasiswa", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestSelect_ProjectionFilterAndOrder(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Table:   "mahasiswa",
		Columns: []string{"id", "nama"},
		Filter:  "kelas = :kelas",
		Params:  Params{":kelas": "A"},
		OrderBy: "id",
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, nama FROM mahasiswa WHERE kelas = :kelas ORDER BY id ASC", stmt.SQL)
	assert.Equal(t, []any{sql.Named("kelas", "A")}, stmt.Args)
}

func TestSelect_StrayParamsIgnored(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Table:  "mahasiswa",
		Filter: "id = :id",
		Params: Params{"id": 3, "nama": "unused", ":npm": "unused"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("id", 3)}, stmt.Args)
}

func TestSelect_MissingParamRejected(t *testing.T) {
	_, err := Select(SelectSpec{
		Table:  "mahasiswa",
		Filter: "id = :id AND kelas = :kelas",
		Params: Params{"id": 3},
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.KindInvalidInput))
	assert.Contains(t, err.Error(), ":kelas")
}

func TestCount_UsesSameFilter(t *testing.T) {
	spec := SelectSpec{
		Table:   "mahasiswa",
		Columns: []string{"nama"},
		Filter:  "kelas = :kelas",
		Params:  Params{"kelas": "B"},
		OrderBy: "id",
	}

	stmt, err := Count(spec)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM mahasiswa WHERE kelas = :kelas", stmt.SQL)
	assert.Equal(t, []any{sql.Named("kelas", "B")}, stmt.Args)
}

func TestUpdate_PrefixedSetPlaceholders(t *testing.T) {
	stmt, err := Update("mahasiswa",
		Fields{F("nama", "Ann"), F("kelas", "B")},
		"nama = :nama",
		Params{"nama": "Annie"},
	)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE mahasiswa SET nama = :upd_nama, kelas = :upd_kelas WHERE nama = :nama", stmt.SQL)
	assert.Equal(t, []any{
		sql.Named("upd_nama", "Ann"),
		sql.Named("upd_kelas", "B"),
		sql.Named("nama", "Annie"),
	}, stmt.Args)
}

func TestUpdate_FilterCollidingWithSetPlaceholder(t *testing.T) {
	_, err := Update("mahasiswa",
		Fields{F("nama", "Ann")},
		"nama = :upd_nama",
		Params{"upd_nama": "x"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestMutations_EmptyFilterRefused(t *testing.T) {
	filters := []string{"", "   ", "\t\n"}
	for _, f := range filters {
		_, err := Update("mahasiswa", Fields{F("nama", "x")}, f, nil)
		require.Error(t, err, "update filter %q", f)
		assert.True(t, failure.Is(err, failure.KindInvalidInput))

		_, err = Delete("mahasiswa", f, nil)
		require.Error(t, err, "delete filter %q", f)
		assert.True(t, failure.Is(err, failure.KindInvalidInput))
	}

	_, err := Update("mahasiswa", nil, "id = :id", Params{"id": 1})
	require.Error(t, err)
}

func TestDelete_Statement(t *testing.T) {
	stmt, err := Delete("mahasiswa", "id = :patokan_id", Params{":patokan_id": "4"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM mahasiswa WHERE id = :patokan_id", stmt.SQL)
	assert.Equal(t, []any{sql.Named("patokan_id", "4")}, stmt.Args)
}

func TestValuesNeverInterpolated(t *testing.T) {
	hostile := "x'); DROP TABLE mahasiswa; --"

	ins, err := Insert("mahasiswa", Fields{F("nama", hostile)})
	require.NoError(t, err)
	assert.NotContains(t, ins.SQL, hostile)
	assert.NotContains(t, ins.SQL, "DROP")

	upd, err := Update("mahasiswa", Fields{F("nama", hostile)}, "npm = :npm", Params{"npm": hostile})
	require.NoError(t, err)
	assert.NotContains(t, upd.SQL, "DROP")

	sel, err := Select(SelectSpec{Table: "mahasiswa", Filter: "nama = :n", Params: Params{"n": hostile}})
	require.NoError(t, err)
	assert.NotContains(t, sel.SQL, "DROP")
	assert.Equal(t, []any{sql.Named("n", hostile)}, sel.Args)
}

func TestIdentifiersValidated(t *testing.T) {
	testCases := []struct {
		name string
		fn   func() error
	}{
		{"table with space", func() error { _, err := Select(SelectSpec{Table: "mahasiswa x"}); return err }},
		{"table with semicolon", func() error { _, err := Delete("t;drop", "id = 1", nil); return err }},
		{"column starting with digit", func() error { _, err := Insert("mahasiswa", Fields{F("1nama", "x")}); return err }},
		{"projection expression", func() error {
			_, err := Select(SelectSpec{Table: "mahasiswa", Columns: []string{"count(*)"}})
			return err
		}},
		{"order by injection", func() error {
			_, err := Select(SelectSpec{Table: "mahasiswa", OrderBy: "id; DROP"})
			return err
		}},
		{"empty table", func() error { _, err := Count(SelectSpec{}); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn()
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindInvalidInput))
		})
	}
}

func TestFilter_StackedStatementRejected(t *testing.T) {
	_, err := Delete("mahasiswa", "id = 1; DELETE FROM mahasiswa", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "';'")
}

func TestFilter_NumberedPlaceholderRejected(t *testing.T) {
	for _, filter := range []string{"id = :1", "id = $1", "id = @1"} {
		t.Run(filter, func(t *testing.T) {
			_, err := Delete("mahasiswa", filter, nil)
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindInvalidInput))
			assert.Contains(t, err.Error(), "numbered placeholder")
		})
	}
}

func TestFilter_CommentsIgnoredAndTerminated(t *testing.T) {
	stmt, err := Select(SelectSpec{
		Table:   "mahasiswa",
		Filter:  "kelas = :k -- :unused",
		Params:  Params{"k": "A"},
		OrderBy: "nama",
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM mahasiswa WHERE kelas = :k -- :unused\n ORDER BY nama ASC", stmt.SQL)
	assert.Equal(t, []any{sql.Named("k", "A")}, stmt.Args)
}

func TestBindValue_NormalizesText(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9.
	stmt, err := Insert("mahasiswa", Fields{F("nama", "Rene\u0301"), F("npm", 42)})
	require.NoError(t, err)

	assert.Equal(t, sql.Named("nama", "Ren\u00e9"), stmt.Args[0])
	assert.Equal(t, sql.Named("npm", 42), stmt.Args[1])
}
