package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"lux/internal/table"
)

// CSVOptions controls ReadCSV.
type CSVOptions struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// MaxRows bounds the number of data rows read; 0 means no bound.
	MaxRows int
	// NormalizeNames applies NormalizeColumnName to every header.
	NormalizeNames bool
}

// ReadCSV reads a header row and data rows into a table and infers a storage
// kind per column.
//
// Reading is best-effort like a probe: records with the wrong field count are
// skipped and cells are trimmed. An input without a header row is an error.
func ReadCSV(r io.Reader, name string, opt CSVOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv %s: empty input", name)
		}
		return nil, fmt.Errorf("csv %s: read header: %w", name, err)
	}
	names := uniqueNames(headers, opt.NormalizeNames)

	cells := make([][]string, len(names))
	rows := 0
	for opt.MaxRows <= 0 || rows < opt.MaxRows {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("csv %s: row %d: %w", name, rows+1, err)
		}
		if len(rec) != len(names) {
			continue
		}
		for i := range rec {
			cells[i] = append(cells[i], strings.TrimSpace(rec[i]))
		}
		rows++
	}

	return buildTable(name, names, cells)
}

// buildTable converts per-column string cells into a validated table.
func buildTable(name string, names []string, cells [][]string) (*table.Table, error) {
	cols := make([]table.Column, len(names))
	for i, n := range names {
		cols[i] = columnFromCells(n, cells[i])
	}
	t, err := table.New(name, cols...)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	return t, nil
}
