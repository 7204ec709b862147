package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// WithTx returns a context carrying the given transaction. Repositories pick
// it up via TxFromContext so that multi-statement operations share one
// transaction without threading pgx handles through every signature.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxFromContext retrieves the transaction from context, or nil when the
// caller is not running inside one.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// RunSerializable executes fn inside a SERIALIZABLE transaction. The
// transaction is injected into the context so repository calls made from fn
// run against it. On any error the transaction is rolled back.
//
// Serializable isolation is what keeps two concurrent overlap-check-then-insert
// sequences for the same doctor from both committing: one of them fails with a
// serialization error and must be retried by the caller.
func RunSerializable(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
