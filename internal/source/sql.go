package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"lux/internal/table"
)

// SQLConfig is the minimal configuration needed to open a database reader.
//
// Kind must match a registered backend ("sqlite", "postgres", "mssql"). DSN
// is passed through to the backend; validation is backend-specific.
type SQLConfig struct {
	Kind string
	DSN  string
}

// Reader reads query results into tables.
type Reader interface {
	// ReadTable runs query and reads at most limit rows (0 means all) into a
	// table named name. Column kinds come from the database column types;
	// columns whose type is unknown are inferred from their values.
	ReadTable(ctx context.Context, name, query string, limit int) (*table.Table, error)

	// Close releases the connection pool. Call it once.
	Close()
}

type readerFactory func(ctx context.Context, cfg SQLConfig) (Reader, error)

var (
	sqlMu        sync.RWMutex
	sqlFactories = map[string]readerFactory{}
)

// Register registers a database backend under kind. Backend packages call it
// from init.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered.
func Register(kind string, f func(ctx context.Context, cfg SQLConfig) (Reader, error)) {
	sqlMu.Lock()
	defer sqlMu.Unlock()

	if kind == "" {
		panic("source: Register called with empty kind")
	}
	if f == nil {
		panic("source: Register called with nil factory")
	}
	if _, exists := sqlFactories[kind]; exists {
		panic(fmt.Sprintf("source: factory already registered for kind=%q", kind))
	}
	sqlFactories[kind] = f
}

// OpenSQL constructs a Reader using the registered backend factory.
//
// Errors:
//   - cfg.Kind is empty or not registered (import the backend package, or
//     lux/internal/source/all).
//   - Whatever the backend factory returns.
func OpenSQL(ctx context.Context, cfg SQLConfig) (Reader, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("source: missing database kind")
	}

	sqlMu.RLock()
	f := sqlFactories[cfg.Kind]
	sqlMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("source: unsupported database kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Registered lists the registered database kinds, sorted.
func Registered() []string {
	sqlMu.RLock()
	defer sqlMu.RUnlock()
	out := make([]string, 0, len(sqlFactories))
	for k := range sqlFactories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KindForDatabaseType maps a database column type name (as reported by
// database/sql or pgx) to a storage kind. ok is false for an empty or
// unrecognized name.
func KindForDatabaseType(dbType string) (kind table.Kind, ok bool) {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "":
		return "", false
	case "int", "int2", "int4", "int8", "integer", "smallint", "bigint", "tinyint", "mediumint",
		"serial", "bigserial", "smallserial":
		return table.KindInteger, true
	case "real", "float", "float4", "float8", "double", "double precision", "numeric", "decimal",
		"money", "smallmoney":
		return table.KindFloat, true
	case "text", "varchar", "nvarchar", "char", "nchar", "bpchar", "character", "character varying",
		"ntext", "clob", "name", "citext", "uuid", "uniqueidentifier":
		return table.KindText, true
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "timestamp", "timestamptz",
		"timestamp without time zone", "timestamp with time zone":
		return table.KindDatetime, true
	case "bool", "boolean", "bit", "blob", "bytea", "varbinary", "binary", "image", "json", "jsonb",
		"xml", "time", "timetz", "interval":
		return table.KindOther, true
	default:
		return "", false
	}
}

// BuildSQLTable turns scanned rows into a table. dbTypes holds one database
// type name per column (empty when unknown). Values are normalized to the
// table conventions: int64, float64, string, time.Time, bool or nil.
func BuildSQLTable(name string, columns, dbTypes []string, rows [][]any) (*table.Table, error) {
	if len(columns) != len(dbTypes) {
		return nil, fmt.Errorf("source %s: %d columns but %d types", name, len(columns), len(dbTypes))
	}
	names := uniqueNames(columns, false)
	cols := make([]table.Column, len(columns))
	for i := range columns {
		vals := make([]any, len(rows))
		for j, r := range rows {
			if i < len(r) {
				vals[j] = normalizeDBValue(r[i])
			}
		}
		k, ok := KindForDatabaseType(dbTypes[i])
		if !ok {
			k = kindFromValues(vals)
		}
		cols[i] = table.Column{Name: names[i], Kind: k, Values: coerceColumn(k, vals)}
	}
	t, err := table.New(name, cols...)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	return t, nil
}

// ScanSQLRows drains rows (at most limit when limit > 0) and builds a table.
// It closes rows.
func ScanSQLRows(name string, rows *sql.Rows, limit int) (*table.Table, error) {
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("source %s: column types: %w", name, err)
	}
	columns := make([]string, len(colTypes))
	dbTypes := make([]string, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = ct.Name()
		dbTypes[i] = ct.DatabaseTypeName()
	}

	var data [][]any
	for rows.Next() {
		if limit > 0 && len(data) >= limit {
			break
		}
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("source %s: scan row %d: %w", name, len(data)+1, err)
		}
		data = append(data, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source %s: rows: %w", name, err)
	}
	return BuildSQLTable(name, columns, dbTypes, data)
}

// DBReader is a Reader over database/sql. The sqlite and mssql backends use it.
type DBReader struct {
	DB *sql.DB
}

// ReadTable implements Reader.
func (r *DBReader) ReadTable(ctx context.Context, name, query string, limit int) (*table.Table, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source %s: query: %w", name, err)
	}
	return ScanSQLRows(name, rows, limit)
}

// Close implements Reader.
func (r *DBReader) Close() {
	if r == nil || r.DB == nil {
		return
	}
	_ = r.DB.Close()
}

func normalizeDBValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// kindFromValues picks a kind for a column whose database type is unknown,
// such as an expression column in SQLite.
func kindFromValues(vals []any) table.Kind {
	var ints, floats, texts, times, bools, present int
	var strs []string
	for _, v := range vals {
		switch x := v.(type) {
		case nil:
			continue
		case int64:
			ints++
		case float64:
			floats++
		case string:
			texts++
			strs = append(strs, x)
		case time.Time:
			times++
		case bool:
			bools++
		}
		present++
	}
	switch {
	case present == 0:
		return table.KindText
	case ints == present:
		return table.KindInteger
	case ints+floats == present:
		return table.KindFloat
	case times == present:
		return table.KindDatetime
	case bools == present:
		return table.KindOther
	case texts == present:
		if k := inferKind(strs); k == table.KindDatetime {
			return k
		}
		return table.KindText
	default:
		return table.KindText
	}
}

// coerceColumn converts normalized values to the representation kind k
// expects. Values that cannot be converted are kept as text.
func coerceColumn(k table.Kind, vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = coerceValue(k, v)
	}
	return out
}

func coerceValue(k table.Kind, v any) any {
	if v == nil {
		return nil
	}
	switch k {
	case table.KindInteger:
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			if x == float64(int64(x)) {
				return int64(x)
			}
			return x
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case string:
			return convertCell(table.KindInteger, x)
		}
	case table.KindFloat:
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f
			}
			return x
		}
	case table.KindDatetime:
		switch x := v.(type) {
		case time.Time:
			return x.UTC()
		case string:
			return convertCell(table.KindDatetime, x)
		}
	case table.KindText:
		switch x := v.(type) {
		case string:
			return x
		case time.Time:
			return x.UTC().Format(time.RFC3339Nano)
		default:
			return fmt.Sprint(x)
		}
	}
	return v
}
