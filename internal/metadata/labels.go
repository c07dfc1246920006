package metadata

import "strings"

// DataType is the statistical type of a column.
type DataType string

const (
	Nominal      DataType = "nominal"
	Ordinal      DataType = "ordinal"
	Quantitative DataType = "quantitative"
	Temporal     DataType = "temporal"
)

// DataTypes lists the four type labels in grouping order.
var DataTypes = []DataType{Quantitative, Ordinal, Nominal, Temporal}

// Valid reports whether t is one of the four type labels.
func (t DataType) Valid() bool {
	switch t {
	case Nominal, Ordinal, Quantitative, Temporal:
		return true
	}
	return false
}

// ParseDataType normalizes s and reports whether it names a type label.
func ParseDataType(s string) (DataType, bool) {
	t := DataType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// DataModel is the analytical role of a column.
type DataModel string

const (
	Measure   DataModel = "measure"
	Dimension DataModel = "dimension"
)

// DataModels lists the two role labels in grouping order.
var DataModels = []DataModel{Measure, Dimension}

// Valid reports whether m is measure or dimension.
func (m DataModel) Valid() bool {
	return m == Measure || m == Dimension
}

// ParseDataModel normalizes s and reports whether it names a role label.
func ParseDataModel(s string) (DataModel, bool) {
	m := DataModel(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}
