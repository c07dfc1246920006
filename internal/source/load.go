// Package source loads tables from files, URLs and databases.
//
// File readers (CSV, JSON, HTML) infer a storage kind per column from the
// cell text. Database readers take kinds from the column types reported by
// the driver. Database backends register themselves; import
// lux/internal/source/all to get every one of them.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lux/internal/metrics"
	"lux/internal/table"
)

// Spec describes where a table comes from.
type Spec struct {
	// Kind is "csv", "json", "html" or a registered database kind. Empty
	// means: guess from the Path extension.
	Kind string
	// Path is a file path, "-" for stdin, or an http(s) URL.
	Path string
	// DSN and Query are used by database kinds.
	DSN   string
	Query string

	// Name names the table. Defaults to the file base name, "stdin" or
	// "query".
	Name string
	// Delimiter overrides the CSV delimiter.
	Delimiter rune
	// Selector picks the HTML table.
	Selector string
	// MaxRows bounds the rows read; 0 means no bound.
	MaxRows int
	// NormalizeNames applies NormalizeColumnName to file headers.
	NormalizeNames bool
	// Timeout bounds URL fetches; 0 means 30s.
	Timeout time.Duration
}

// Stdin is read when Spec.Path is "-".
var Stdin io.Reader = os.Stdin

// Load reads the table described by s.
func Load(ctx context.Context, s Spec) (*table.Table, error) {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		kind = kindFromPath(s.Path)
		if kind == "" {
			return nil, fmt.Errorf("source: cannot guess kind of %q; set it explicitly", s.Path)
		}
	}
	if kind == "tsv" {
		kind = "csv"
		if s.Delimiter == 0 {
			s.Delimiter = '\t'
		}
	}
	name := s.Name
	if name == "" {
		name = defaultName(s.Path)
	}

	var (
		t   *table.Table
		err error
	)
	switch kind {
	case "csv", "json", "html":
		t, err = loadFile(ctx, kind, name, s)
	default:
		t, err = loadSQL(ctx, kind, name, s)
	}
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.SourceRowsTotal, float64(t.NumRows()), metrics.Labels{"kind": kind})
	return t, nil
}

func loadFile(ctx context.Context, kind, name string, s Spec) (*table.Table, error) {
	rc, err := openInput(ctx, s.Path, s.Timeout)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch kind {
	case "csv":
		return ReadCSV(rc, name, CSVOptions{Delimiter: s.Delimiter, MaxRows: s.MaxRows, NormalizeNames: s.NormalizeNames})
	case "json":
		return ReadJSON(rc, name, JSONOptions{MaxRows: s.MaxRows, NormalizeNames: s.NormalizeNames})
	default:
		return ReadHTMLTable(rc, name, HTMLOptions{Selector: s.Selector, MaxRows: s.MaxRows, NormalizeNames: s.NormalizeNames})
	}
}

func loadSQL(ctx context.Context, kind, name string, s Spec) (*table.Table, error) {
	if strings.TrimSpace(s.Query) == "" {
		return nil, fmt.Errorf("source: %s needs a query", kind)
	}
	r, err := OpenSQL(ctx, SQLConfig{Kind: kind, DSN: s.DSN})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadTable(ctx, name, s.Query, s.MaxRows)
}

// openInput opens a local file, stdin ("-") or an http(s) URL.
func openInput(ctx context.Context, path string, timeout time.Duration) (io.ReadCloser, error) {
	switch {
	case path == "":
		return nil, fmt.Errorf("source: missing path")
	case path == "-":
		return io.NopCloser(Stdin), nil
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("source: build request: %w", err)
		}
		req.Header.Set("User-Agent", "lux/1.0")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("source: fetch %s: %w", path, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			cancel()
			return nil, fmt.Errorf("source: fetch %s: status %s", path, resp.Status)
		}
		return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		return f, nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func kindFromPath(path string) string {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 && strings.Contains(p, "://") {
		p = p[:i]
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return "csv"
	case ".tsv", ".tab":
		return "tsv"
	case ".json", ".ndjson", ".jsonl":
		return "json"
	case ".html", ".htm":
		return "html"
	default:
		return ""
	}
}

func defaultName(path string) string {
	switch path {
	case "":
		return "query"
	case "-":
		return "stdin"
	}
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 && strings.Contains(p, "://") {
		p = p[:i]
	}
	base := filepath.Base(p)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "query"
	}
	return base
}
