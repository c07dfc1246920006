package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lux/internal/metadata"
	"lux/internal/table"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := "Name, Age ,Score,Joined,Member,Smoker\n" +
		"ann,31,1.5,2021-01-01,true,Y\n" +
		"bob,,2.5,2021-02-01,FALSE,n\n" +
		"broken,row\n" +
		"cid,45,3,2021-03-01,True,yes\n"

	tbl, err := ReadCSV(strings.NewReader(in), "people", CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, "people", tbl.Name)
	assert.Equal(t, 3, tbl.NumRows(), "short record is skipped")
	assert.Equal(t, []string{"Name", "Age", "Score", "Joined", "Member", "Smoker"}, tbl.ColumnNames())

	want := map[string]table.Kind{
		"Name":   table.KindText,
		"Age":    table.KindInteger,
		"Score":  table.KindFloat,
		"Joined": table.KindDatetime,
		"Member": table.KindOther,
		"Smoker": table.KindText,
	}
	for _, c := range tbl.Columns {
		assert.Equal(t, want[c.Name], c.Kind, c.Name)
	}

	age, _ := tbl.Column("Age")
	assert.Equal(t, []any{int64(31), nil, int64(45)}, age.Values)
}

func TestReadCSV_Options(t *testing.T) {
	t.Parallel()

	in := "Horse Power;Origin\n130;USA\n165;Japan\n150;USA\n"
	tbl, err := ReadCSV(strings.NewReader(in), "cars", CSVOptions{Delimiter: ';', MaxRows: 2, NormalizeNames: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"horse_power", "origin"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.NumRows())
}

func TestReadCSV_HeaderOnlyAndEmpty(t *testing.T) {
	t.Parallel()

	tbl, err := ReadCSV(strings.NewReader("a,b\n"), "h", CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())

	_, err = ReadCSV(strings.NewReader(""), "e", CSVOptions{})
	require.Error(t, err)
}

func TestReadCSV_YesNoColumnIsNominalDimension(t *testing.T) {
	t.Parallel()

	tbl, err := ReadCSV(strings.NewReader("smoker,city\nyes,a\nno,b\nY,c\nN,d\n"), "survey", CSVOptions{})
	require.NoError(t, err)

	md, err := metadata.NewEngine(nil).Compute(tbl, nil)
	require.NoError(t, err)

	dt, ok := md.Types.Lookup("smoker")
	require.True(t, ok)
	assert.Equal(t, metadata.Nominal, dt)
	dm, ok := md.Roles.Lookup("smoker")
	require.True(t, ok)
	assert.Equal(t, metadata.Dimension, dm)
}
