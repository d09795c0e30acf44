package utils

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jxiaof/next16-demo/internal/interfaces"
)

// TransactionTimeout bounds every transaction opened by the account actions.
const TransactionTimeout = 10 * time.Second

// BeginTransaction begins a new database transaction with a context deadline.
// It returns the transaction object, the transaction context, and a cancel function for the context.
func BeginTransaction(ctx context.Context, pool interfaces.PgxPoolIface) (pgx.Tx, context.Context, context.CancelFunc, error) {
	LogMessageWithFields(ctx, "debug", "Beginning transaction...")
	transactionCtx, cancel := context.WithTimeout(ctx, TransactionTimeout)

	tx, err := pool.Begin(transactionCtx)
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error beginning transaction", err)
		cancel()
		return nil, nil, nil, err
	}

	return tx, transactionCtx, cancel, nil
}

// RollbackTransaction rolls back the given transaction and cancels its context.
// It is safe to defer after a successful commit, a closed transaction is ignored.
func RollbackTransaction(ctx context.Context, tx pgx.Tx, cancel context.CancelFunc) {
	defer cancel()

	if err := tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		LogMessageWithFieldsAndError(ctx, "error", "Error rolling back transaction", err)
		return
	}
	LogMessageWithFields(ctx, "debug", "Transaction rolled back")
}

// CommitTransaction attempts to commit the given transaction and logs the outcome.
func CommitTransaction(ctx context.Context, tx pgx.Tx) error {
	LogMessageWithFields(ctx, "debug", "Committing transaction...")

	if err := tx.Commit(ctx); err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error committing transaction", err)
		return err
	}

	LogMessageWithFields(ctx, "debug", "Transaction committed")
	return nil
}
