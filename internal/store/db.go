package store

import (
	"context"
	"database/sql"
)

// DBTX is the minimal database surface the stores depend on. Both *sql.DB
// and *sql.Tx satisfy it, so a store method runs the same whether it was
// given a plain connection or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
