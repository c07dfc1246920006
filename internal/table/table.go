// Package table holds the in-memory tabular data model consumed by the
// metadata engine: named columns with a storage kind and row values.
//
// A Table is a plain value container. It does not compute anything about its
// contents; statistics and classification live in internal/metadata.
package table

import (
	"fmt"
	"strings"
)

// Kind is the declared storage kind of a column.
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindText     Kind = "text"
	KindDatetime Kind = "datetime"
	KindOther    Kind = "other"
)

// IsNumeric reports whether k is an integer or float kind.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// ParseKind maps a loose kind label to a Kind. Unknown labels map to KindOther.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "int64", "bigint":
		return KindInteger
	case "float", "float64", "double", "numeric", "decimal":
		return KindFloat
	case "text", "string", "object":
		return KindText
	case "datetime", "date", "timestamp", "time", "datetime64":
		return KindDatetime
	default:
		return KindOther
	}
}

// Column is one named column of a Table.
//
// Values holds one entry per row. nil marks a missing value and is a legal
// value for every kind; float columns may also hold NaN.
type Column struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Values []any  `json:"values"`
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	Name    string
	Columns []Column
}

// New builds a table from columns and validates it.
//
// Errors:
//   - a column has an empty name
//   - two columns share a name
//   - columns have different lengths
func New(name string, cols ...Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the structural invariants of t.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	rows := -1
	for i, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("table %s: column %d has empty name", t.Name, i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("table %s: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
		if rows >= 0 && len(c.Values) != rows {
			return fmt.Errorf("table %s: column %q has %d rows, want %d", t.Name, c.Name, len(c.Values), rows)
		}
		rows = len(c.Values)
	}
	return nil
}

// NumRows returns the row count, 0 for a table without columns.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Row returns row i as a name -> value map.
func (t *Table) Row(i int) map[string]any {
	out := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		if i < len(c.Values) {
			out[c.Name] = c.Values[i]
		}
	}
	return out
}

// Clone returns a copy of t whose column slices can be mutated independently.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cp := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cp.Columns[i] = Column{
			Name:   c.Name,
			Kind:   c.Kind,
			Values: append([]any(nil), c.Values...),
		}
	}
	return cp
}
