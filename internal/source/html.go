package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lux/internal/table"
)

// HTMLOptions controls ReadHTMLTable.
type HTMLOptions struct {
	// Selector picks the table; the first match is used. Defaults to "table".
	Selector string
	// MaxRows bounds the number of data rows read; 0 means no bound.
	MaxRows int
	// NormalizeNames applies NormalizeColumnName to every header.
	NormalizeNames bool
}

// ReadHTMLTable reads the first table matching opt.Selector.
//
// The header comes from the th cells of the first row that has any (usually
// inside thead). Without th cells the first row is the header. Data rows are
// the remaining rows with td cells; rows whose cell count differs from the
// header are skipped. Cells are inferred like CSV cells.
func ReadHTMLTable(r io.Reader, name string, opt HTMLOptions) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("html %s: parse: %w", name, err)
	}

	sel := opt.Selector
	if sel == "" {
		sel = "table"
	}
	tbl := doc.Find(sel).First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("html %s: no element matches %q", name, sel)
	}

	var headers []string
	var data [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}
		ths := tr.ChildrenFiltered("th")
		tds := tr.ChildrenFiltered("td")
		switch {
		case headers == nil && ths.Length() > 0:
			headers = cellTexts(tr.ChildrenFiltered("th, td"))
		case headers == nil:
			headers = cellTexts(tds)
		case tds.Length() > 0:
			if opt.MaxRows > 0 && len(data) >= opt.MaxRows {
				return
			}
			row := cellTexts(tr.ChildrenFiltered("th, td"))
			if len(row) == len(headers) {
				data = append(data, row)
			}
		}
	})
	if len(headers) == 0 {
		return nil, fmt.Errorf("html %s: table has no header row", name)
	}

	names := uniqueNames(headers, opt.NormalizeNames)
	cells := make([][]string, len(names))
	for _, row := range data {
		for i := range row {
			cells[i] = append(cells[i], row[i])
		}
	}
	return buildTable(name, names, cells)
}

func cellTexts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, c *goquery.Selection) {
		out = append(out, strings.Join(strings.Fields(c.Text()), " "))
	})
	return out
}
