// Package frame provides Frame, a table augmented with inferred column
// metadata.
//
// A Frame owns its table, its schema overrides, its intent context and the
// metadata derived from them. Every change that can affect the metadata
// (construction, SetTable, SetSchema, SetContext, AddToContext, Refresh)
// recomputes the statistics, the types and the roles as one unit and swaps
// them in together.
//
// A Frame is not safe for concurrent mutation; callers serialize
// context-changing calls on one instance.
package frame

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lux/internal/intent"
	"lux/internal/metadata"
	"lux/internal/table"
)

// Frame is a table plus its derived metadata.
type Frame struct {
	table   *table.Table
	schema  metadata.Schema
	context []intent.Clause

	engine *metadata.Engine
	log    *zap.Logger

	md       metadata.Metadata
	err      error
	resolved [][]string
	revision int
}

// Option configures a Frame at construction.
type Option func(*Frame)

// WithSchema sets the schema overrides.
func WithSchema(s metadata.Schema) Option {
	return func(f *Frame) { f.schema = append(metadata.Schema(nil), s...) }
}

// WithContext sets the initial intent context.
func WithContext(clauses ...intent.Clause) Option {
	return func(f *Frame) { f.context = append([]intent.Clause(nil), clauses...) }
}

// WithEngine replaces the default engine.
func WithEngine(e *metadata.Engine) Option {
	return func(f *Frame) { f.engine = e }
}

// WithLogger sets the logger used by the frame and, when the engine has
// none, by the engine.
func WithLogger(l *zap.Logger) Option {
	return func(f *Frame) { f.log = l }
}

// New builds a Frame over t and computes its metadata.
//
// An invalid table is an error. Classification and override problems are
// not: they are reported through Err and the metadata stays usable.
func New(t *table.Table, opts ...Option) (*Frame, error) {
	if t == nil {
		return nil, errors.New("frame: nil table")
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}

	f := &Frame{table: t}
	for _, o := range opts {
		o(f)
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}
	if f.engine == nil {
		f.engine = metadata.NewEngine(f.log)
	} else if f.engine.Logger == nil {
		e := *f.engine
		e.Logger = f.log
		f.engine = &e
	}

	f.refresh()
	return f, nil
}

// refresh recomputes everything and swaps the result in at once.
func (f *Frame) refresh() {
	md, err := f.engine.Compute(f.table, f.schema)

	var resolved [][]string
	if len(f.context) > 0 {
		r, cerr := intent.Resolve(md, f.context)
		if cerr != nil {
			err = multierr.Append(err, cerr)
		} else {
			resolved = r
		}
	}

	f.md, f.err, f.resolved = md, err, resolved
	f.revision++

	f.log.Debug("frame refreshed",
		zap.String("table", f.table.Name),
		zap.Int("revision", f.revision),
		zap.Int("context_clauses", len(f.context)),
		zap.Bool("has_errors", err != nil),
	)
}

// Refresh recomputes the metadata from the current table, schema and context.
// Use it after mutating the table in place. A table that no longer validates
// is an error and the previous metadata is kept.
func (f *Frame) Refresh() error {
	if err := f.table.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	f.refresh()
	return nil
}

// SetTable replaces the table and recomputes.
func (f *Frame) SetTable(t *table.Table) error {
	if t == nil {
		return errors.New("frame: nil table")
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	f.table = t
	f.refresh()
	return nil
}

// SetSchema replaces the schema overrides and recomputes.
func (f *Frame) SetSchema(s metadata.Schema) {
	f.schema = append(metadata.Schema(nil), s...)
	f.refresh()
}

// Schema returns a copy of the schema overrides.
func (f *Frame) Schema() metadata.Schema {
	return append(metadata.Schema(nil), f.schema...)
}

// SetContext replaces the intent context and recomputes.
func (f *Frame) SetContext(clauses []intent.Clause) {
	f.context = append([]intent.Clause(nil), clauses...)
	f.refresh()
}

// AddToContext appends clauses to the intent context and recomputes.
func (f *Frame) AddToContext(clauses ...intent.Clause) {
	f.context = append(f.context, clauses...)
	f.refresh()
}

// Context returns a copy of the intent context.
func (f *Frame) Context() []intent.Clause {
	return append([]intent.Clause(nil), f.context...)
}

// ResolvedContext returns the columns each context clause matched in the
// last recompute. It is nil when the context is empty or invalid.
func (f *Frame) ResolvedContext() [][]string {
	if f.resolved == nil {
		return nil
	}
	out := make([][]string, len(f.resolved))
	for i, r := range f.resolved {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Table returns the underlying table.
func (f *Frame) Table() *table.Table { return f.table }

// Revision counts recomputes, starting at 1 after New.
func (f *Frame) Revision() int { return f.revision }

// Metadata returns the current derived state.
func (f *Frame) Metadata() metadata.Metadata { return f.md }

// Err returns the combined classification, override and context errors of the
// last recompute, or nil.
func (f *Frame) Err() error { return f.err }

// Stats returns the statistics cache.
func (f *Frame) Stats() metadata.Stats { return f.md.Stats }

// UniqueValues returns the distinct values of a column.
func (f *Frame) UniqueValues(column string) []any { return f.md.Stats.UniqueValues(column) }

// Cardinality returns the distinct count of a column.
func (f *Frame) Cardinality(column string) int { return f.md.Stats.Cardinality(column) }

// DataTypeLookup returns column -> type.
func (f *Frame) DataTypeLookup() map[string]metadata.DataType { return f.md.Types.LookupMap() }

// DataType returns type -> columns.
func (f *Frame) DataType() map[metadata.DataType][]string { return f.md.Types.Groups() }

// DataModelLookup returns column -> role.
func (f *Frame) DataModelLookup() map[string]metadata.DataModel { return f.md.Roles.LookupMap() }

// DataModel returns role -> columns.
func (f *Frame) DataModel() map[metadata.DataModel][]string { return f.md.Roles.Groups() }

type frameJSON struct {
	Table           string                          `json:"table"`
	Rows            int                             `json:"rows"`
	Columns         []string                        `json:"columns"`
	Cardinality     map[string]int                  `json:"cardinality"`
	DataTypeLookup  map[string]metadata.DataType    `json:"dataTypeLookup"`
	DataType        map[metadata.DataType][]string  `json:"dataType"`
	DataModelLookup map[string]metadata.DataModel   `json:"dataModelLookup"`
	DataModel       map[metadata.DataModel][]string `json:"dataModel"`
	Context         []intent.Clause                 `json:"context,omitempty"`
	Resolved        [][]string                      `json:"resolvedContext,omitempty"`
	Errors          []string                        `json:"errors,omitempty"`
}

// MarshalJSON exports the derived metadata for downstream consumers.
func (f *Frame) MarshalJSON() ([]byte, error) {
	var msgs []string
	for _, e := range multierr.Errors(f.err) {
		msgs = append(msgs, e.Error())
	}
	return json.Marshal(frameJSON{
		Table:           f.table.Name,
		Rows:            f.table.NumRows(),
		Columns:         f.table.ColumnNames(),
		Cardinality:     f.md.Stats.CardinalityMap(),
		DataTypeLookup:  f.DataTypeLookup(),
		DataType:        f.DataType(),
		DataModelLookup: f.DataModelLookup(),
		DataModel:       f.DataModel(),
		Context:         f.context,
		Resolved:        f.resolved,
		Errors:          msgs,
	})
}
