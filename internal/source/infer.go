package source

import (
	"strconv"
	"strings"
	"time"

	"lux/internal/table"
)

// inferKind guesses the storage kind of a text column. Empty cells are
// ignored; a column with no non-empty cell is text. Boolean columns map to
// KindOther.
func inferKind(cells []string) table.Kind {
	var seen bool
	allInt := true
	allFloat := true
	allBool := true
	allTime := true

	for _, c := range cells {
		v := strings.TrimSpace(c)
		if v == "" {
			continue
		}
		seen = true

		if allInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBoolLoose(v); !ok {
				allBool = false
			}
		}
		if allTime {
			if _, ok := parseTimeLoose(v); !ok {
				allTime = false
			}
		}
		if !allInt && !allFloat && !allBool && !allTime {
			break
		}
	}

	if !seen {
		return table.KindText
	}
	// Integers win over booleans so that 0/1 columns stay numeric.
	switch {
	case allInt:
		return table.KindInteger
	case allFloat:
		return table.KindFloat
	case allBool:
		return table.KindOther
	case allTime:
		return table.KindDatetime
	default:
		return table.KindText
	}
}

// convertCell turns one raw cell into a typed value for kind k. Empty cells
// become nil. A cell that does not parse keeps its text.
func convertCell(k table.Kind, s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	switch k {
	case table.KindInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case table.KindFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case table.KindOther:
		if b, ok := parseBoolLoose(v); ok {
			return b
		}
	case table.KindDatetime:
		if ts, ok := parseTimeLoose(v); ok {
			return ts
		}
	}
	return v
}

// columnFromCells infers the kind of a text column and converts its cells.
func columnFromCells(name string, cells []string) table.Column {
	k := inferKind(cells)
	vals := make([]any, len(cells))
	for i, c := range cells {
		vals[i] = convertCell(k, c)
	}
	return table.Column{Name: name, Kind: k, Values: vals}
}

// parseBoolLoose accepts only true and false, in any case. Survey-style
// tokens (yes/no, y/n, t/f) stay text and classify as nominal.
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

var tsLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"02.01.2006 15:04:05",
}

// parseTimeLoose accepts the date and timestamp layouts above. Values without
// a zone are read as UTC.
func parseTimeLoose(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, lay := range dateLayouts {
		if t, err := time.ParseInLocation(lay, s, time.UTC); err == nil {
			return t, true
		}
	}
	for _, lay := range tsLayouts {
		if t, err := time.ParseInLocation(lay, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
