// Package database provides the transaction engines the sandbox drives.
//
// An Engine opens root transactions and savepoints and exposes the ambient
// namespace its queries consult. Two engines ship with the package:
//
//   - SQL: database/sql with real SAVEPOINT statements (SQLite via
//     modernc.org/sqlite by default, any driver that speaks savepoints).
//   - Surreal: SurrealDB with batch-based transactions.
//
// # Handles
//
// Every transaction or savepoint is a Tx. A root has a nil Parent and keeps
// its savepoints in open order:
//
//	root, _ := engine.Begin(ctx, database.TxOptions{Isolation: database.ReadUncommitted})
//	sp, _ := engine.Begin(ctx, database.TxOptions{Parent: root, Isolation: database.ReadUncommitted})
//	_ = sp.Rollback(ctx)
//	_ = root.Rollback(ctx)
//
// Resolving a finished handle returns ErrTxDone.
//
// # Ambient Transactions
//
// Once an engine is bound to a namespace with UseNamespace, queries issued
// through SQL.Querier(ctx) run inside whatever transaction the chain of ctx
// holds under TransactionKey, and fall back to the pool otherwise:
//
//	engine.UseNamespace(ns)
//	_, err := engine.Querier(ctx).ExecContext(ctx, "INSERT INTO users (username) VALUES (?)", name)
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//   - ErrTxDone: Handle already committed or rolled back
//   - ErrNoNamespace: Engine has no ambient namespace
//
// Use errors.Is() to check error types.
package database
