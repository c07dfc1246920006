package metadata

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"lux/internal/table"
)

// FormatReport renders a human-readable per-column summary of md, one line
// per column in table order, followed by any errors.
func FormatReport(t *table.Table, md Metadata, err error) string {
	if t == nil || len(t.Columns) == 0 {
		return "metadata: no columns"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "metadata report:\ttable=%s\trows=%d\n", t.Name, t.NumRows())
	fmt.Fprintf(&b, "%-20s\t%-9s\t%-7s\t%-12s\t%s\n", "col", "kind", "unique", "type", "model")

	for _, c := range t.Columns {
		dt, ok := md.Types.Lookup(c.Name)
		typ := string(dt)
		if !ok {
			typ = "-"
		}
		dm, ok := md.Roles.Lookup(c.Name)
		model := string(dm)
		if !ok {
			model = "-"
		}
		fmt.Fprintf(&b, "%-20s\t%-9s\t%-7d\t%-12s\t%s\n",
			c.Name, c.Kind, md.Stats.Cardinality(c.Name), typ, model)
	}

	if errs := multierr.Errors(err); len(errs) > 0 {
		fmt.Fprintf(&b, "errors:\n")
		for _, e := range errs {
			fmt.Fprintf(&b, "  %v\n", e)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
