package mssql

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lux/internal/source"
	"lux/internal/table"
)

func TestDatabaseTypes(t *testing.T) {
	t.Parallel()

	tests := map[string]table.Kind{
		"INT":            table.KindInteger,
		"BIGINT":         table.KindInteger,
		"DECIMAL":        table.KindFloat,
		"MONEY":          table.KindFloat,
		"NVARCHAR":       table.KindText,
		"DATETIME2":      table.KindDatetime,
		"DATETIMEOFFSET": table.KindDatetime,
		"BIT":            table.KindOther,
	}
	for in, want := range tests {
		got, ok := source.KindForDatabaseType(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestRegistered(t *testing.T) {
	t.Parallel()
	assert.Contains(t, source.Registered(), "mssql")
}

// TestReadTable_Live runs against a real server when LUX_TEST_MSSQL_DSN is set.
func TestReadTable_Live(t *testing.T) {
	dsn := os.Getenv("LUX_TEST_MSSQL_DSN")
	if dsn == "" {
		t.Skip("LUX_TEST_MSSQL_DSN not set")
	}

	ctx := context.Background()
	r, err := source.OpenSQL(ctx, source.SQLConfig{Kind: "mssql", DSN: dsn})
	require.NoError(t, err)
	defer r.Close()

	tbl, err := r.ReadTable(ctx, "probe",
		`SELECT CAST(1 AS INT) AS id, CAST(2.5 AS DECIMAL(5,2)) AS score, N'x' AS code, SYSUTCDATETIME() AS at`, 0)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.NumRows())

	score, _ := tbl.Column("score")
	assert.Equal(t, table.KindFloat, score.Kind)
	assert.Equal(t, 2.5, score.Values[0])
}
