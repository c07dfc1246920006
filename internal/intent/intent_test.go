package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"lux/internal/metadata"
	"lux/internal/table"
)

func testMetadata(t *testing.T) metadata.Metadata {
	t.Helper()
	const n = 12
	a, b, c, d := make([]any, n), make([]any, n), make([]any, n), make([]any, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = int64(i * 2)
		c[i] = []string{"x", "y"}[i%2]
		d[i] = int64(i % 3)
	}
	tbl, err := table.New("t",
		table.Column{Name: "mpg", Kind: table.KindFloat, Values: a},
		table.Column{Name: "weight", Kind: table.KindInteger, Values: b},
		table.Column{Name: "origin", Kind: table.KindText, Values: c},
		table.Column{Name: "cylinders", Kind: table.KindInteger, Values: d},
	)
	require.NoError(t, err)
	md, err := metadata.NewEngine(nil).Compute(tbl, nil)
	require.NoError(t, err)
	return md
}

func TestResolve(t *testing.T) {
	t.Parallel()

	md := testMetadata(t)

	tests := []struct {
		name    string
		clauses []Clause
		want    [][]string
	}{
		{
			name:    "any measure",
			clauses: []Clause{Any(metadata.Measure)},
			want:    [][]string{{"mpg", "weight"}},
		},
		{
			name:    "any dimension",
			clauses: []Clause{Any(metadata.Dimension)},
			want:    [][]string{{"origin", "cylinders"}},
		},
		{
			name:    "wildcard without role, measures first",
			clauses: []Clause{{Attribute: Wildcard}},
			want:    [][]string{{"mpg", "weight", "origin", "cylinders"}},
		},
		{
			name:    "wildcard by type",
			clauses: []Clause{{Attribute: Wildcard, DataType: metadata.Nominal}},
			want:    [][]string{{"origin", "cylinders"}},
		},
		{
			name:    "named attribute",
			clauses: []Clause{Attr("origin"), Any(metadata.Measure)},
			want:    [][]string{{"origin"}, {"mpg", "weight"}},
		},
		{
			name:    "named attribute filtered out by role",
			clauses: []Clause{{Attribute: "origin", DataModel: metadata.Measure}},
			want:    [][]string{{}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(md, tt.clauses)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	md := testMetadata(t)
	err := Validate(md, []Clause{
		Attr("missing"),
		{Attribute: Wildcard, DataType: "colour"},
		{Attribute: Wildcard, DataModel: "metric"},
		Attr("mpg"),
	})
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "missing")
	assert.Contains(t, errs[1].Error(), "unknown data type")
	assert.Contains(t, errs[2].Error(), "unknown data model")

	_, err = Resolve(md, []Clause{Attr("missing")})
	require.Error(t, err)
}

func TestCombinations(t *testing.T) {
	t.Parallel()

	got := Combinations([][]string{{"a", "b", "c"}, {"a", "b", "c"}})
	assert.Equal(t, [][]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}, got)

	got = Combinations([][]string{{"a", "b"}, {"x"}})
	assert.Equal(t, [][]string{{"a", "x"}, {"b", "x"}}, got)

	assert.Nil(t, Combinations(nil))
	assert.Nil(t, Combinations([][]string{{"a"}, {"a"}}))
}

func TestParseClause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Clause
		wantErr bool
	}{
		{in: "horsepower", want: Attr("horsepower")},
		{in: "?", want: Clause{Attribute: Wildcard}},
		{in: "?:measure", want: Any(metadata.Measure)},
		{in: "?:Nominal:dimension", want: Clause{Attribute: Wildcard, DataType: metadata.Nominal, DataModel: metadata.Dimension}},
		{in: "year:temporal", want: Clause{Attribute: "year", DataType: metadata.Temporal}},
		{in: "", wantErr: true},
		{in: "?:colour", wantErr: true},
		{in: "?:measure:dimension", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClause(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
