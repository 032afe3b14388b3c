// Package repository holds the SQL for departments and people.
//
// Every repository works against DBTX so the same code runs on a pgx pool
// in production and on pgxmock in tests.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories need.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// nullable turns an optional string into a driver argument, nil meaning NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// rollback is used on the failure path only. Its error is dropped because the
// statement error that triggered it is the one worth reporting.
func rollback(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}
