// Package sandbox manages the transactions and savepoints that keep tests
// from leaking writes into each other.
//
// The Manager keeps one root transaction per ambient chain. The first Open
// in an empty chain begins the root at read-uncommitted isolation and stores
// it under database.TransactionKey; later Opens add savepoints beneath it.
// Stop resolves the newest unresolved savepoint, or the root once all its
// savepoints are done, so teardown hooks match their setup hooks by stack
// order rather than by passing handles around:
//
//	tx, err := m.Open(ctx, "Users > creates a user")
//	...
//	_, err = m.Stop(ctx, failed, "Users > creates a user")
//
// Stop rolls back unless the boundary failed and commit-on-failure is
// enabled. Stopping a finished handle is a no-op that returns it unchanged.
//
// # Events
//
// A Notifier publishes transaction-started, committed and rolled-back
// events, plus the sandbox-breached diagnostic raised when code commits a
// savepoint on its own while commits are not sanctioned. Subscribers run
// synchronously, in subscription order, before Open or Stop returns.
package sandbox
