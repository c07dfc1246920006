package metadata

import "lux/internal/table"

// ColumnStats holds the distinct values of one column.
type ColumnStats struct {
	// UniqueValues lists each distinct value once, in first-seen order.
	UniqueValues []any
	// Cardinality is len(UniqueValues).
	Cardinality int
}

// Stats is the per-column statistics cache for one table revision.
type Stats struct {
	columns map[string]ColumnStats
	order   []string
}

// ComputeStats builds the statistics cache for t.
//
// Nothing is dropped: nil and NaN each count as one distinct value.
// Distinctness uses table.ValueKey. An empty table yields an empty cache.
func ComputeStats(t *table.Table) Stats {
	s := Stats{columns: make(map[string]ColumnStats)}
	if t == nil {
		return s
	}

	for _, c := range t.Columns {
		seen := make(map[string]struct{}, len(c.Values))
		uniq := make([]any, 0)
		for _, v := range c.Values {
			k := table.ValueKey(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			uniq = append(uniq, v)
		}
		s.columns[c.Name] = ColumnStats{UniqueValues: uniq, Cardinality: len(uniq)}
		s.order = append(s.order, c.Name)
	}
	return s
}

// Column returns the stats of one column.
func (s Stats) Column(name string) (ColumnStats, bool) {
	c, ok := s.columns[name]
	if !ok {
		return ColumnStats{}, false
	}
	c.UniqueValues = append([]any(nil), c.UniqueValues...)
	return c, true
}

// Cardinality returns the distinct count of a column, 0 if unknown.
func (s Stats) Cardinality(name string) int {
	return s.columns[name].Cardinality
}

// UniqueValues returns a copy of the distinct values of a column.
func (s Stats) UniqueValues(name string) []any {
	return append([]any(nil), s.columns[name].UniqueValues...)
}

// CardinalityMap returns column -> cardinality for every column.
func (s Stats) CardinalityMap() map[string]int {
	out := make(map[string]int, len(s.columns))
	for k, c := range s.columns {
		out[k] = c.Cardinality
	}
	return out
}

// Columns returns the column names in table order.
func (s Stats) Columns() []string {
	return append([]string(nil), s.order...)
}

// Len is the number of columns in the cache.
func (s Stats) Len() int { return len(s.columns) }
