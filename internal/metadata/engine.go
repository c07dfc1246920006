// Package metadata is the metadata inference engine: per-column statistics,
// statistical type classification and analytical role mapping, with
// schema overrides applied after inference.
//
// The pipeline runs as one unit:
//
//	ComputeStats -> ClassifyTypes (InferTypes, then type overrides) -> MapRoles
//
// Errors never abort the pipeline. A column that cannot be classified or a
// directive that cannot be applied is reported and skipped; everything else
// is still classified.
package metadata

import (
	"errors"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lux/internal/metrics"
	"lux/internal/table"
)

// Metadata is the complete derived state of one table revision.
type Metadata struct {
	Stats Stats
	Types Grouping[DataType]
	Roles Grouping[DataModel]
}

// Equal reports whether m and o classify the same columns the same way.
func (m Metadata) Equal(o Metadata) bool {
	if !m.Types.Equal(o.Types) || !m.Roles.Equal(o.Roles) {
		return false
	}
	a, b := m.Stats.CardinalityMap(), o.Stats.CardinalityMap()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Engine runs the inference pipeline.
type Engine struct {
	// NominalCardinality is the numeric cutoff; <= 0 means
	// DefaultNominalCardinality.
	NominalCardinality int
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// NewEngine returns an engine with the default threshold.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{NominalCardinality: DefaultNominalCardinality, Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Engine) threshold() int {
	if e == nil || e.NominalCardinality <= 0 {
		return DefaultNominalCardinality
	}
	return e.NominalCardinality
}

// Compute derives the statistics, types and roles of t.
//
// The returned Metadata is always populated for every column that could be
// classified. The error combines all *UnclassifiedColumnError and
// *InvalidOverrideError values; use multierr.Errors to list them and
// errors.Is with ErrUnclassifiedColumn / ErrInvalidOverride to test for them.
func (e *Engine) Compute(t *table.Table, schema Schema) (Metadata, error) {
	start := time.Now()

	stats := ComputeStats(t)
	types, typeErr := ClassifyTypes(t, stats, schema, e.threshold())
	roles, roleErr := MapRoles(types, schema)
	err := multierr.Combine(typeErr, roleErr)

	md := Metadata{Stats: stats, Types: types, Roles: roles}
	e.record(t, md, err, start)
	return md, err
}

func (e *Engine) record(t *table.Table, md Metadata, err error, start time.Time) {
	var overrideErrs, unclassified int
	for _, x := range multierr.Errors(err) {
		switch {
		case errors.Is(x, ErrInvalidOverride):
			overrideErrs++
		case errors.Is(x, ErrUnclassifiedColumn):
			unclassified++
		}
	}

	for _, l := range DataTypes {
		if n := len(md.Types.Group(l)); n > 0 {
			metrics.IncCounter(metrics.ColumnsTotal, float64(n), metrics.Labels{"data_type": string(l)})
		}
	}
	metrics.IncCounter(metrics.OverrideErrorsTotal, float64(overrideErrs), nil)
	metrics.IncCounter(metrics.UnclassifiedColumnsTotal, float64(unclassified), nil)
	metrics.ObserveSince(metrics.MetadataDurationSeconds, start, nil)

	name := ""
	if t != nil {
		name = t.Name
	}
	fields := []zap.Field{
		zap.String("table", name),
		zap.Int("columns", md.Stats.Len()),
		zap.Int("rows", t.NumRows()),
		zap.Int("measures", len(md.Roles.Group(Measure))),
		zap.Int("dimensions", len(md.Roles.Group(Dimension))),
		zap.Int("override_errors", overrideErrs),
		zap.Int("unclassified", unclassified),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		e.logger().Warn("metadata computed with errors", append(fields, zap.Error(err))...)
		return
	}
	e.logger().Debug("metadata computed", fields...)
}
