package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Schema
		wantErr bool
	}{
		{
			name: "flat form",
			in:   `[{"column":"age","dataModel":"measure"},{"column":"size","dataType":"Ordinal"}]`,
			want: Schema{
				{Column: "age", DataModel: Measure},
				{Column: "size", DataType: Ordinal},
			},
		},
		{
			name: "keyed form",
			in:   `[{"age":{"dataModel":"measure","dataType":"quantitative"}}]`,
			want: Schema{{Column: "age", DataType: Quantitative, DataModel: Measure}},
		},
		{
			name: "keyed form for a column named column",
			in:   `[{"column":{"dataType":"nominal"}}]`,
			want: Schema{{Column: "column", DataType: Nominal}},
		},
		{
			name: "empty input",
			in:   "  ",
			want: nil,
		},
		{
			name:    "keyed form with two keys",
			in:      `[{"a":{},"b":{}}]`,
			wantErr: true,
		},
		{
			name:    "not an array",
			in:      `{"column":"a"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSchema([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSchema(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"column":"x","dataType":"temporal"}]`), 0o644))

	s, err := LoadSchema(p)
	require.NoError(t, err)
	assert.Equal(t, Schema{{Column: "x", DataType: Temporal}}, s)

	_, err = LoadSchema(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestLabels(t *testing.T) {
	t.Parallel()

	dt, ok := ParseDataType(" Temporal ")
	assert.True(t, ok)
	assert.Equal(t, Temporal, dt)
	_, ok = ParseDataType("colour")
	assert.False(t, ok)

	dm, ok := ParseDataModel("MEASURE")
	assert.True(t, ok)
	assert.Equal(t, Measure, dm)
	_, ok = ParseDataModel("")
	assert.False(t, ok)
}
