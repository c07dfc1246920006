package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"lux/internal/table"
)

// JSONOptions controls ReadJSON.
type JSONOptions struct {
	// MaxRows bounds the number of records read; 0 means no bound.
	MaxRows int
	// NormalizeNames applies NormalizeColumnName to every flattened key.
	NormalizeNames bool
}

// ReadJSON reads records into a table.
//
// Accepted shapes:
//   - a root array of objects (non-objects are skipped)
//   - an envelope object holding an array of objects; the largest such
//     array wins
//   - a single object
//   - newline-delimited objects following any of the above
//
// Nested objects are flattened with "_" ({"a":{"b":1}} -> "a_b"). Columns are
// ordered by name. Missing keys become nil.
func ReadJSON(r io.Reader, name string, opt JSONOptions) (*table.Table, error) {
	recs, err := decodeRecords(r, opt.MaxRows)
	if err != nil {
		return nil, fmt.Errorf("json %s: %w", name, err)
	}

	flat := make([]map[string]any, len(recs))
	keys := map[string]struct{}{}
	for i, rec := range recs {
		out := map[string]any{}
		flattenRecord("", rec, out)
		for k := range out {
			keys[k] = struct{}{}
		}
		flat[i] = out
	}

	raw := make([]string, 0, len(keys))
	for k := range keys {
		raw = append(raw, k)
	}
	sort.Strings(raw)
	names := uniqueNames(raw, opt.NormalizeNames)

	cols := make([]table.Column, len(raw))
	for i, k := range raw {
		vals := make([]any, len(flat))
		for j, rec := range flat {
			vals[j] = rec[k]
		}
		cols[i] = columnFromJSON(names[i], vals)
	}

	t, err := table.New(name, cols...)
	if err != nil {
		return nil, fmt.Errorf("json %s: %w", name, err)
	}
	return t, nil
}

func decodeRecords(r io.Reader, maxRecords int) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var out []map[string]any
	full := func() bool { return maxRecords > 0 && len(out) >= maxRecords }
	emit := func(m map[string]any) {
		if m != nil && !full() {
			out = append(out, m)
		}
	}

	switch v := root.(type) {
	case []any:
		for _, it := range v {
			if m, ok := it.(map[string]any); ok {
				emit(m)
			}
		}
	case map[string]any:
		if slice := largestObjectSlice(v); slice != nil {
			for _, m := range slice {
				emit(m)
			}
		} else {
			emit(v)
		}
	default:
		return nil, fmt.Errorf("unsupported root %T", root)
	}

	for !full() {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		emit(obj)
	}
	return out, nil
}

// largestObjectSlice returns the longest field of root that is a non-empty
// array of objects, or nil.
func largestObjectSlice(root map[string]any) []map[string]any {
	keys := make([]string, 0, len(root))
	for k := range root {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best []map[string]any
	for _, k := range keys {
		arr, ok := root[k].([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		objs := make([]map[string]any, 0, len(arr))
		for _, elem := range arr {
			m, ok := elem.(map[string]any)
			if !ok {
				objs = nil
				break
			}
			objs = append(objs, m)
		}
		if len(objs) > len(best) {
			best = objs
		}
	}
	return best
}

func flattenRecord(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "_" + k
		}
		if m, ok := v.(map[string]any); ok && len(m) > 0 {
			flattenRecord(key, m, out)
			continue
		}
		out[key] = v
	}
}

// columnFromJSON picks a kind from decoded values.
//
// All numbers: integer when every number is integral, float otherwise.
// All strings: datetime when every string is a timestamp, text otherwise.
// All booleans: other. Anything mixed or nested: text, with numbers and
// booleans rendered as strings and arrays rendered as JSON.
func columnFromJSON(name string, vals []any) table.Column {
	var nums, strs, bools, present int
	allInt := true
	allTime := true
	for _, v := range vals {
		if v == nil {
			continue
		}
		present++
		switch x := v.(type) {
		case json.Number:
			nums++
			if _, err := x.Int64(); err != nil {
				allInt = false
			}
		case string:
			strs++
			if _, ok := parseTimeLoose(x); !ok {
				allTime = false
			}
		case bool:
			bools++
		}
	}

	col := table.Column{Name: name, Kind: table.KindText, Values: make([]any, len(vals))}
	switch {
	case present == 0:
	case nums == present && allInt:
		col.Kind = table.KindInteger
		for i, v := range vals {
			if n, ok := v.(json.Number); ok {
				col.Values[i], _ = n.Int64()
			}
		}
		return col
	case nums == present:
		col.Kind = table.KindFloat
		for i, v := range vals {
			if n, ok := v.(json.Number); ok {
				col.Values[i], _ = n.Float64()
			}
		}
		return col
	case strs == present && allTime:
		col.Kind = table.KindDatetime
		for i, v := range vals {
			if s, ok := v.(string); ok {
				col.Values[i], _ = parseTimeLoose(s)
			}
		}
		return col
	case bools == present:
		col.Kind = table.KindOther
		copy(col.Values, vals)
		return col
	}

	for i, v := range vals {
		col.Values[i] = jsonText(v)
	}
	return col
}

func jsonText(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
