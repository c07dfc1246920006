package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lux/internal/config"
	"lux/internal/frame"
	"lux/internal/intent"
	"lux/internal/metadata"
	"lux/internal/source"
)

func newInferCmd(a *app) *cobra.Command {
	var intents []string

	cmd := &cobra.Command{
		Use:   "infer [path|url|-]",
		Short: "Infer column metadata for a table",
		Long: `Reads one table and prints, per column, its distinct count, data type
(quantitative, ordinal, nominal, temporal) and role (measure, dimension).

Overrides come from --schema, a JSON list such as
  [{"horsepower": {"dataType": "nominal"}}, {"year": {"dataModel": "dimension"}}]

Intent clauses (--intent) take the forms
  horsepower   ?   ?:measure   ?:nominal   ?:nominal:dimension`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clauses, err := parseIntents(intents)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				a.v.Set("source.path", args[0])
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.infer(cmd.Context(), cfg, clauses)
		},
	}

	f := cmd.Flags()
	f.String("kind", "", "source kind: csv, tsv, json, html, postgres, sqlite, mssql (default: from extension)")
	f.String("dsn", "", "database connection string")
	f.String("query", "", "database query")
	f.String("name", "", "table name (default: file base name)")
	f.String("delimiter", "", "CSV delimiter: one character or \"tab\"")
	f.String("selector", "", "CSS selector of the HTML table (default: table)")
	f.Int("max-rows", 0, "read at most this many rows (0: all)")
	f.Bool("normalize-names", false, "normalize column names to lower_snake_case")
	f.String("schema", "", "JSON file of per-column overrides")
	f.String("format", "text", "output format: text or json")
	f.Bool("strict", false, "exit 1 when metadata has errors")
	f.Int("threshold", metadata.DefaultNominalCardinality, "distinct-count cutoff below which numeric columns are nominal")
	f.StringArrayVar(&intents, "intent", nil, "intent clause; repeatable")

	mustBind(a.v, "source.kind", f.Lookup("kind"))
	mustBind(a.v, "source.dsn", f.Lookup("dsn"))
	mustBind(a.v, "source.query", f.Lookup("query"))
	mustBind(a.v, "source.name", f.Lookup("name"))
	mustBind(a.v, "source.delimiter", f.Lookup("delimiter"))
	mustBind(a.v, "source.selector", f.Lookup("selector"))
	mustBind(a.v, "source.max_rows", f.Lookup("max-rows"))
	mustBind(a.v, "source.normalize_names", f.Lookup("normalize-names"))
	mustBind(a.v, "schema", f.Lookup("schema"))
	mustBind(a.v, "output.format", f.Lookup("format"))
	mustBind(a.v, "output.strict", f.Lookup("strict"))
	mustBind(a.v, "inference.nominal_cardinality", f.Lookup("threshold"))

	return cmd
}

func parseIntents(raw []string) ([]intent.Clause, error) {
	var out []intent.Clause
	for _, s := range raw {
		c, err := intent.ParseClause(s)
		if err != nil {
			return nil, fmt.Errorf("--intent: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *app) infer(ctx context.Context, cfg *config.Config, clauses []intent.Clause) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	closeMetrics := setupMetrics(ctx, cfg, log)
	defer closeMetrics()

	spec := cfg.SourceSpec()
	t, err := source.Load(ctx, spec)
	if err != nil {
		return err
	}
	log.Debug("table loaded",
		zap.String("table", t.Name),
		zap.Int("columns", len(t.Columns)),
		zap.Int("rows", t.NumRows()),
	)

	var schema metadata.Schema
	if cfg.Schema != "" {
		schema, err = metadata.LoadSchema(cfg.Schema)
		if err != nil {
			return err
		}
	}

	f, err := frame.New(t,
		frame.WithSchema(schema),
		frame.WithContext(clauses...),
		frame.WithEngine(&metadata.Engine{NominalCardinality: cfg.Inference.NominalCardinality}),
		frame.WithLogger(log),
	)
	if err != nil {
		return err
	}
	if f.Err() != nil {
		log.Warn("metadata has errors", zap.Error(f.Err()))
	}

	if err := writeFrame(a.stdout, f, strings.ToLower(cfg.Output.Format)); err != nil {
		return err
	}
	if cfg.Output.Strict && f.Err() != nil {
		return errStrict
	}
	return nil
}

func writeFrame(w io.Writer, f *frame.Frame, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}

	fmt.Fprintln(w, metadata.FormatReport(f.Table(), f.Metadata(), f.Err()))

	ctxClauses := f.Context()
	resolved := f.ResolvedContext()
	if len(ctxClauses) == 0 || resolved == nil {
		return nil
	}
	fmt.Fprintln(w, "context:")
	for i, c := range ctxClauses {
		fmt.Fprintf(w, "  %-24s\t%s\n", c.String(), strings.Join(resolved[i], ", "))
	}
	combos := intent.Combinations(resolved)
	fmt.Fprintf(w, "combinations: %d\n", len(combos))
	for _, c := range combos {
		fmt.Fprintf(w, "  %s\n", strings.Join(c, ", "))
	}
	return nil
}
