package store

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tables = []string{
	"crm_cust_info", "crm_prd_info", "crm_sales_details",
	"erp_cust_az12", "erp_loc_a101", "erp_px_cat_g1v2",
}

func TestMigrations_CoverAllTables(t *testing.T) {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	var all strings.Builder
	for _, f := range files {
		b, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(b), "-- +goose Up", f)
		assert.Contains(t, string(b), "-- +goose Down", f)
		all.Write(b)
	}

	for _, schema := range []string{"bronze", "silver"} {
		for _, table := range tables {
			assert.Contains(t, all.String(), "CREATE TABLE "+schema+"."+table+" (")
		}
	}
}

func TestDuckDBSchema_MatchesMigrations(t *testing.T) {
	stmts := statements(duckdbSchema)
	// two schemas plus six tables per schema
	assert.Len(t, stmts, 14)

	for _, schema := range []string{"bronze", "silver"} {
		for _, table := range tables {
			assert.Contains(t, duckdbSchema, "CREATE TABLE IF NOT EXISTS "+schema+"."+table+" (")
		}
	}
	assert.NotContains(t, duckdbSchema, "now()")
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range statements(duckdbSchema) {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatements(t *testing.T) {
	got := statements("CREATE SCHEMA a;\n\n  CREATE TABLE a.b (x INT);\n;")
	assert.Equal(t, []string{"CREATE SCHEMA a", "CREATE TABLE a.b (x INT)"}, got)
}
