package metadata

import "encoding/json"

// Grouping is a bidirectional column <-> label map.
//
// Both directions are built together from one source and never mutated
// afterwards, so Groups is always the exact inverse of Lookup. Labels keep
// a fixed order and every label has a (possibly empty) group.
type Grouping[L ~string] struct {
	labels []L
	lookup map[string]L
	groups map[L][]string
}

// groupingFromLookup builds a grouping from a finished assignment. Columns
// inside each group follow the order of columns; names in lookup that are
// absent from columns are dropped.
func groupingFromLookup[L ~string](labels []L, columns []string, lookup map[string]L) Grouping[L] {
	g := Grouping[L]{
		labels: append([]L(nil), labels...),
		lookup: make(map[string]L, len(lookup)),
		groups: make(map[L][]string, len(labels)),
	}
	for _, l := range labels {
		g.groups[l] = []string{}
	}
	for _, c := range columns {
		l, ok := lookup[c]
		if !ok {
			continue
		}
		if _, known := g.groups[l]; !known {
			continue
		}
		g.lookup[c] = l
		g.groups[l] = append(g.groups[l], c)
	}
	return g
}

// groupingFromGroups builds a grouping from finished label sets. A column
// listed under more than one label keeps the first.
func groupingFromGroups[L ~string](labels []L, groups map[L][]string) Grouping[L] {
	g := Grouping[L]{
		labels: append([]L(nil), labels...),
		lookup: make(map[string]L),
		groups: make(map[L][]string, len(labels)),
	}
	for _, l := range labels {
		g.groups[l] = []string{}
		for _, c := range groups[l] {
			if _, dup := g.lookup[c]; dup {
				continue
			}
			g.lookup[c] = l
			g.groups[l] = append(g.groups[l], c)
		}
	}
	return g
}

// Lookup returns the label of column, if it has one.
func (g Grouping[L]) Lookup(column string) (L, bool) {
	l, ok := g.lookup[column]
	return l, ok
}

// Group returns a copy of the columns carrying label, in group order.
func (g Grouping[L]) Group(label L) []string {
	return append([]string(nil), g.groups[label]...)
}

// Labels returns the label order.
func (g Grouping[L]) Labels() []L {
	return append([]L(nil), g.labels...)
}

// LookupMap returns a copy of the column -> label direction.
func (g Grouping[L]) LookupMap() map[string]L {
	out := make(map[string]L, len(g.lookup))
	for k, v := range g.lookup {
		out[k] = v
	}
	return out
}

// Groups returns a copy of the label -> columns direction.
func (g Grouping[L]) Groups() map[L][]string {
	out := make(map[L][]string, len(g.groups))
	for _, l := range g.labels {
		out[l] = g.Group(l)
	}
	return out
}

// Len is the number of labelled columns.
func (g Grouping[L]) Len() int { return len(g.lookup) }

// Equal reports whether g and o hold the same assignment and group order.
func (g Grouping[L]) Equal(o Grouping[L]) bool {
	if len(g.lookup) != len(o.lookup) || len(g.labels) != len(o.labels) {
		return false
	}
	for i, l := range g.labels {
		if o.labels[i] != l {
			return false
		}
		a, b := g.groups[l], o.groups[l]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON emits {"lookup": {...}, "groups": {...}}.
func (g Grouping[L]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lookup map[string]L   `json:"lookup"`
		Groups map[L][]string `json:"groups"`
	}{
		Lookup: g.LookupMap(),
		Groups: g.Groups(),
	})
}
