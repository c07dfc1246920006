// Package postgres registers the "postgres" source backend on a pgx
// connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"lux/internal/source"
	"lux/internal/table"
)

func init() {
	source.Register("postgres", Open)
}

// Reader implements source.Reader for Postgres.
type Reader struct {
	pool  *pgxpool.Pool
	types *pgtype.Map
}

// Open creates a pool for cfg.DSN and checks connectivity.
func Open(ctx context.Context, cfg source.SQLConfig) (source.Reader, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Reader{pool: pool, types: pgtype.NewMap()}, nil
}

// Close closes the connection pool.
func (r *Reader) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

// ReadTable implements source.Reader.
func (r *Reader) ReadTable(ctx context.Context, name, query string, limit int) (*table.Table, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres %s: query: %w", name, err)
	}
	return readRows(name, r.types, rows, limit)
}

func readRows(name string, types *pgtype.Map, rows pgx.Rows, limit int) (*table.Table, error) {
	defer rows.Close()

	fds := rows.FieldDescriptions()
	columns := make([]string, len(fds))
	dbTypes := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
		dbTypes[i] = typeName(types, fd.DataTypeOID)
	}

	var data [][]any
	for rows.Next() {
		if limit > 0 && len(data) >= limit {
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres %s: row %d: %w", name, len(data)+1, err)
		}
		for i := range vals {
			vals[i] = pgValue(vals[i])
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres %s: rows: %w", name, err)
	}
	return source.BuildSQLTable(name, columns, dbTypes, data)
}

// typeName resolves a type OID to its Postgres name ("int4", "timestamptz").
// Unknown OIDs resolve to "".
func typeName(types *pgtype.Map, oid uint32) string {
	if t, ok := types.TypeForOID(oid); ok {
		return t.Name
	}
	return ""
}

// pgValue converts pgx driver values that have no plain Go counterpart.
func pgValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	case pgtype.Date:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Timestamp:
		if !x.Valid {
			return nil
		}
		return x.Time
	case pgtype.Timestamptz:
		if !x.Valid {
			return nil
		}
		return x.Time
	case time.Duration:
		return x.String()
	default:
		return v
	}
}
