// Package sqlite registers the "sqlite" source backend (modernc.org/sqlite,
// no cgo).
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"lux/internal/source"
)

func init() {
	source.Register("sqlite", Open)
}

// Open opens the database at cfg.DSN and checks connectivity. The pool is
// held to one connection so that ":memory:" databases stay the same database
// across queries.
func Open(ctx context.Context, cfg source.SQLConfig) (source.Reader, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &source.DBReader{DB: db}, nil
}
