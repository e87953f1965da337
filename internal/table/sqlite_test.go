package table

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = db.Exec(`CREATE TABLE "service requests" (
		unique_key INTEGER,
		complaint_type TEXT,
		latitude REAL,
		closed_date TEXT
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "service requests" VALUES
		(1, 'Noise', 40.71, NULL),
		(2, 'Heating', 40.8, '2024-01-02'),
		(3, NULL, NULL, NULL)`)
	require.NoError(t, err)
	return path
}

func TestReadSQLite(t *testing.T) {
	t.Parallel()

	path := createTestSQLite(t)

	f, err := ReadSQLite(context.Background(), path, "service requests", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"unique_key", "complaint_type", "latitude", "closed_date"}, f.Columns())
	assert.Equal(t, 3, f.Len())

	keys, _ := f.Column("unique_key")
	assert.Equal(t, []string{"1", "2", "3"}, keys)

	lat, _ := f.Column("latitude")
	assert.Equal(t, []string{"40.71", "40.8", ""}, lat)

	types, _ := f.Column("complaint_type")
	assert.Equal(t, []string{"Noise", "Heating", ""}, types)
}

func TestReadSQLite_MaxRows(t *testing.T) {
	t.Parallel()

	path := createTestSQLite(t)

	f, err := ReadSQLite(context.Background(), path, "service requests", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestReadSQLite_MissingTable(t *testing.T) {
	t.Parallel()

	path := createTestSQLite(t)

	_, err := ReadSQLite(context.Background(), path, "nope", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite: query nope")
}

func TestReadSQLite_TableRequired(t *testing.T) {
	t.Parallel()

	_, err := ReadSQLite(context.Background(), "ignored.db", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table name required")
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"plain"`, quoteIdent("plain"))
	assert.Equal(t, `"public"."parks"`, quoteIdent("public.parks"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
