package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cols    []Column
		wantErr string
	}{
		{
			name: "ok",
			cols: []Column{
				{Name: "a", Kind: KindInteger, Values: []any{int64(1), int64(2)}},
				{Name: "b", Kind: KindText, Values: []any{"x", nil}},
			},
		},
		{
			name:    "empty name",
			cols:    []Column{{Name: " ", Kind: KindText}},
			wantErr: "empty name",
		},
		{
			name: "duplicate",
			cols: []Column{
				{Name: "a", Kind: KindText},
				{Name: "a", Kind: KindText},
			},
			wantErr: "duplicate column",
		},
		{
			name: "ragged",
			cols: []Column{
				{Name: "a", Kind: KindText, Values: []any{"x"}},
				{Name: "b", Kind: KindText, Values: []any{"x", "y"}},
			},
			wantErr: "has 2 rows, want 1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := New("t", tt.cols...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.cols[0].Values), tbl.NumRows())
		})
	}
}

func TestTable_Accessors(t *testing.T) {
	t.Parallel()

	tbl, err := New("people",
		Column{Name: "name", Kind: KindText, Values: []any{"ann", "bob"}},
		Column{Name: "age", Kind: KindInteger, Values: []any{int64(30), int64(41)}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, tbl.ColumnNames())
	assert.True(t, tbl.Has("age"))
	assert.False(t, tbl.Has("height"))
	assert.Equal(t, map[string]any{"name": "bob", "age": int64(41)}, tbl.Row(1))

	cp := tbl.Clone()
	cp.Columns[0].Values[0] = "zed"
	assert.Equal(t, "ann", tbl.Columns[0].Values[0])
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	cases := map[string]Kind{
		"int64":      KindInteger,
		"FLOAT64":    KindFloat,
		"object":     KindText,
		"datetime64": KindDatetime,
		"bool":       KindOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseKind(in), in)
	}
	assert.True(t, KindFloat.IsNumeric())
	assert.False(t, KindText.IsNumeric())
}

func TestValueKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ValueKey(math.NaN()), ValueKey(math.NaN()))
	assert.NotEqual(t, ValueKey(int64(1)), ValueKey("1"))
	assert.NotEqual(t, ValueKey(int64(1)), ValueKey(float64(1)))
	assert.NotEqual(t, ValueKey(nil), ValueKey("nil"))
	assert.Equal(t, ValueKey(1), ValueKey(int64(1)))
	assert.Equal(t, ValueKey(0.0), ValueKey(math.Copysign(0, -1)))
	assert.Equal(t, ValueKey(float32(0)), ValueKey(math.Copysign(0, -1)))

	ts := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, ValueKey(ts), ValueKey(ts.In(time.FixedZone("x", 3600))))
}
