package metadata

import (
	"go.uber.org/multierr"
)

// MapRoles partitions the classified columns into measures and dimensions.
//
// Seeding: quantitative columns are measures; ordinal, then nominal, then
// temporal columns are dimensions, in that order.
//
// Role overrides of schema are then applied in order. A forced "measure"
// moves the column out of dimension and appends it to measure; any other
// non-empty forced role moves it out of measure and appends it to dimension.
// A directive whose target is the column's current role does nothing. A
// column found in neither set (unknown or unclassified) yields an
// *InvalidOverrideError and the directive is skipped.
func MapRoles(types Grouping[DataType], schema Schema) (Grouping[DataModel], error) {
	measure := types.Group(Quantitative)
	dimension := make([]string, 0, types.Len())
	dimension = append(dimension, types.Group(Ordinal)...)
	dimension = append(dimension, types.Group(Nominal)...)
	dimension = append(dimension, types.Group(Temporal)...)

	var errs error
	for i, o := range schema {
		if o.DataModel == "" {
			continue
		}

		from, to := &measure, &dimension
		target := Dimension
		if o.DataModel == Measure {
			from, to = &dimension, &measure
			target = Measure
		}

		if contains(*to, o.Column) {
			continue
		}
		rest, ok := remove(*from, o.Column)
		if !ok {
			errs = multierr.Append(errs, &InvalidOverrideError{
				Index: i, Column: o.Column, Field: "dataModel", Value: string(o.DataModel),
				Reason: "column is not a classified " + string(otherRole(target)),
			})
			continue
		}
		*from = rest
		*to = append(*to, o.Column)
	}

	return groupingFromGroups(DataModels, map[DataModel][]string{
		Measure:   measure,
		Dimension: dimension,
	}), errs
}

func otherRole(m DataModel) DataModel {
	if m == Measure {
		return Dimension
	}
	return Measure
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// remove returns s without the first occurrence of v.
func remove(s []string, v string) ([]string, bool) {
	for i, x := range s {
		if x == v {
			out := make([]string, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...), true
		}
	}
	return s, false
}
