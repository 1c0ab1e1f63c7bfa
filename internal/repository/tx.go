package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// inTx runs fn inside a transaction when db can open one (a pool, or a tx
// through a savepoint) and directly on db otherwise.
func inTx(ctx context.Context, db DBTX, fn func(DBTX) error) error {
	beginner, ok := db.(interface {
		Begin(ctx context.Context) (pgx.Tx, error)
	})
	if !ok {
		return fn(db)
	}
	return pgx.BeginFunc(ctx, beginner, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
