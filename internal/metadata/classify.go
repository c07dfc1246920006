package metadata

import (
	"fmt"

	"go.uber.org/multierr"

	"lux/internal/table"
)

// DefaultNominalCardinality is the distinct-count cutoff for numeric columns.
// Numeric columns with fewer distinct values are nominal, the rest are
// quantitative.
//
// This is a heuristic: a low-cardinality numeric column (a 1-5 rating) is
// usually a category, but a genuinely nominal numeric code with 10 or more
// distinct values still lands in quantitative. Callers that know better use
// a schema override.
const DefaultNominalCardinality = 10

// InferTypes is the automatic classification pass. It returns the type of
// every column it could classify and, in table order, the columns it could
// not (storage kind other).
//
// threshold <= 0 falls back to DefaultNominalCardinality.
func InferTypes(t *table.Table, stats Stats, threshold int) (map[string]DataType, []string) {
	if threshold <= 0 {
		threshold = DefaultNominalCardinality
	}
	out := make(map[string]DataType)
	var unclassified []string
	if t == nil {
		return out, nil
	}

	for _, c := range t.Columns {
		switch {
		case c.Kind.IsNumeric():
			if stats.Cardinality(c.Name) < threshold {
				out[c.Name] = Nominal
			} else {
				out[c.Name] = Quantitative
			}
		case c.Kind == table.KindText:
			out[c.Name] = Nominal
		case c.Kind == table.KindDatetime:
			out[c.Name] = Temporal
		default:
			unclassified = append(unclassified, c.Name)
		}
	}
	return out, unclassified
}

// ClassifyTypes runs InferTypes and then applies the type overrides of
// schema in order.
//
// The returned grouping always covers every column that ended up with a type.
// The error, when non-nil, combines (multierr) one *InvalidOverrideError per
// rejected directive and one *UnclassifiedColumnError per column left without
// a type.
func ClassifyTypes(t *table.Table, stats Stats, schema Schema, threshold int) (Grouping[DataType], error) {
	lookup, _ := InferTypes(t, stats, threshold)

	var errs error
	for i, o := range schema {
		if o.DataType == "" {
			continue
		}
		if !t.Has(o.Column) {
			errs = multierr.Append(errs, &InvalidOverrideError{
				Index: i, Column: o.Column, Field: "dataType", Value: string(o.DataType),
				Reason: "column not in table",
			})
			continue
		}
		if !o.DataType.Valid() {
			errs = multierr.Append(errs, &InvalidOverrideError{
				Index: i, Column: o.Column, Field: "dataType", Value: string(o.DataType),
				Reason: fmt.Sprintf("unknown data type, want one of %v", DataTypes),
			})
			continue
		}
		lookup[o.Column] = o.DataType
	}

	cols := t.ColumnNames()
	for _, c := range cols {
		if _, ok := lookup[c]; ok {
			continue
		}
		col, _ := t.Column(c)
		errs = multierr.Append(errs, &UnclassifiedColumnError{Column: c, Kind: string(col.Kind)})
	}

	return groupingFromLookup(DataTypes, cols, lookup), errs
}
