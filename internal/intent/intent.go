// Package intent resolves a user context (a list of clauses such as
// "any measure" or "the column horsepower") against computed metadata.
//
// It is the read path downstream recommendation code uses: it only consumes
// the type and role groupings, never the raw table.
package intent

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"lux/internal/metadata"
)

// Wildcard matches every column that passes the clause filters.
const Wildcard = "?"

// Clause is one entry of a context.
type Clause struct {
	// Attribute is a column name or Wildcard.
	Attribute string `json:"attribute"`
	// DataType optionally restricts a wildcard to one type.
	DataType metadata.DataType `json:"dataType,omitempty"`
	// DataModel optionally restricts a wildcard to one role.
	DataModel metadata.DataModel `json:"dataModel,omitempty"`
}

// Any returns a wildcard clause restricted to role m.
func Any(m metadata.DataModel) Clause {
	return Clause{Attribute: Wildcard, DataModel: m}
}

// Attr returns a clause naming one column.
func Attr(name string) Clause {
	return Clause{Attribute: name}
}

// ParseClause parses the command-line form of a clause:
//
//	horsepower         the column horsepower
//	?                  any column
//	?:measure          any measure (or dimension)
//	?:nominal          any column of that type
//	?:nominal:dimension
//
// Filters may also follow a column name.
func ParseClause(s string) (Clause, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	c := Clause{Attribute: strings.TrimSpace(parts[0])}
	if c.Attribute == "" {
		return Clause{}, fmt.Errorf("clause %q: missing attribute", s)
	}
	for _, p := range parts[1:] {
		if m, ok := metadata.ParseDataModel(p); ok && c.DataModel == "" {
			c.DataModel = m
			continue
		}
		if dt, ok := metadata.ParseDataType(p); ok && c.DataType == "" {
			c.DataType = dt
			continue
		}
		return Clause{}, fmt.Errorf("clause %q: unknown or repeated filter %q", s, p)
	}
	return c, nil
}

func (c Clause) String() string {
	s := c.Attribute
	if c.DataType != "" {
		s += " type=" + string(c.DataType)
	}
	if c.DataModel != "" {
		s += " model=" + string(c.DataModel)
	}
	return s
}

// ClauseError reports a clause that cannot be resolved.
type ClauseError struct {
	Index  int
	Clause Clause
	Reason string
}

func (e *ClauseError) Error() string {
	return fmt.Sprintf("context clause #%d (%s): %s", e.Index, e.Clause, e.Reason)
}

// Validate checks every clause against md and returns the combined errors.
func Validate(md metadata.Metadata, clauses []Clause) error {
	var errs error
	for i, c := range clauses {
		if c.DataType != "" && !c.DataType.Valid() {
			errs = multierr.Append(errs, &ClauseError{Index: i, Clause: c, Reason: "unknown data type"})
			continue
		}
		if c.DataModel != "" && !c.DataModel.Valid() {
			errs = multierr.Append(errs, &ClauseError{Index: i, Clause: c, Reason: "unknown data model"})
			continue
		}
		if c.Attribute == Wildcard {
			continue
		}
		if _, ok := md.Types.Lookup(c.Attribute); !ok {
			errs = multierr.Append(errs, &ClauseError{Index: i, Clause: c, Reason: "column is not classified"})
		}
	}
	return errs
}

// Resolve returns, per clause, the columns it matches.
//
// A named attribute resolves to itself when it is classified and passes the
// clause filters. A wildcard resolves to the role group (or every role group,
// measures first) filtered by type.
func Resolve(md metadata.Metadata, clauses []Clause) ([][]string, error) {
	if err := Validate(md, clauses); err != nil {
		return nil, err
	}

	out := make([][]string, len(clauses))
	for i, c := range clauses {
		var cand []string
		if c.Attribute == Wildcard {
			models := metadata.DataModels
			if c.DataModel != "" {
				models = []metadata.DataModel{c.DataModel}
			}
			for _, m := range models {
				cand = append(cand, md.Roles.Group(m)...)
			}
		} else {
			cand = []string{c.Attribute}
		}

		matched := make([]string, 0, len(cand))
		for _, col := range cand {
			if match(md, c, col) {
				matched = append(matched, col)
			}
		}
		out[i] = matched
	}
	return out, nil
}

func match(md metadata.Metadata, c Clause, col string) bool {
	if c.DataType != "" {
		if dt, ok := md.Types.Lookup(col); !ok || dt != c.DataType {
			return false
		}
	}
	if c.DataModel != "" {
		if dm, ok := md.Roles.Lookup(col); !ok || dm != c.DataModel {
			return false
		}
	}
	return true
}

// Combinations picks one column per resolved clause, never the same column
// twice in one combination. Combinations that differ only in order are
// reported once. Order follows the resolved lists.
func Combinations(resolved [][]string) [][]string {
	if len(resolved) == 0 {
		return nil
	}
	var out [][]string
	seen := map[string]struct{}{}
	cur := make([]string, 0, len(resolved))
	used := map[string]bool{}

	var walk func(i int)
	walk = func(i int) {
		if i == len(resolved) {
			k := setKey(cur)
			if _, dup := seen[k]; dup {
				return
			}
			seen[k] = struct{}{}
			out = append(out, append([]string(nil), cur...))
			return
		}
		for _, col := range resolved[i] {
			if used[col] {
				continue
			}
			used[col] = true
			cur = append(cur, col)
			walk(i + 1)
			cur = cur[:len(cur)-1]
			used[col] = false
		}
	}
	walk(0)
	return out
}

func setKey(cols []string) string {
	cp := append([]string(nil), cols...)
	sort.Strings(cp)
	return strings.Join(cp, "\x00")
}
