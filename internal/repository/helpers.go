package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/model"
)

// Migrations holds the schema of the example application.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the *.sql files.
const MigrationsDir = "migrations"

// Source hands out the querier for a context. *database.SQL implements it.
type Source interface {
	Querier(ctx context.Context) database.Querier
}

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
}

func validate(errs []model.FieldError) error {
	if len(errs) > 0 {
		return model.NewValidationError(errs)
	}
	return nil
}

// WithTransaction runs fn inside a savepoint of the context's transaction,
// or inside a new root bound to a forked chain when there is none. The
// transaction commits when fn succeeds and rolls back otherwise.
func WithTransaction(ctx context.Context, engine database.Engine, fn func(ctx context.Context) error) error {
	ns := engine.Namespace()
	if ns == nil {
		return database.ErrNoNamespace
	}

	var parent database.Tx
	if v, err := ns.Get(ctx, database.TransactionKey); err == nil {
		if tx, ok := v.(database.Tx); ok && tx != nil && !tx.Finished() {
			parent = tx
		}
	}

	tx, err := engine.Begin(ctx, database.TxOptions{Parent: parent})
	if err != nil {
		return err
	}
	if parent == nil {
		ctx = ns.Fork(ctx)
		if err := ns.Set(ctx, database.TransactionKey, tx); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	if err := fn(ctx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, database.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	return tx.Commit(ctx)
}

// countRows returns the number of rows of table visible to ctx.
func countRows(ctx context.Context, src Source, table string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := src.Querier(ctx).QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", database.ErrQuery, table, err)
	}
	return n, nil
}
