package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SQLTx is a root transaction or a savepoint on the root's connection.
// All handles of one root share the root's lock.
type SQLTx struct {
	id     string
	name   string
	tx     *sql.Tx
	parent Tx
	root   *SQLTx

	// guarded by root.mu
	finished  bool
	children  []Tx
	intercept Interceptor
	opened    []*SQLTx

	mu sync.Mutex
}

func (t *SQLTx) ID() string { return t.id }

// Name is the SQL savepoint identifier; empty for a root.
func (t *SQLTx) Name() string { return t.name }

func (t *SQLTx) Parent() Tx { return t.parent }

func (t *SQLTx) Finished() bool {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	return t.finished
}

func (t *SQLTx) Savepoints() []Tx {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	out := make([]Tx, len(t.children))
	copy(out, t.children)
	return out
}

func (t *SQLTx) InterceptSavepoints(fn Interceptor) {
	t.root.mu.Lock()
	t.root.intercept = fn
	t.root.mu.Unlock()
}

func (t *SQLTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *SQLTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *SQLTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *SQLTx) savepoint(ctx context.Context, parent Tx) (Tx, error) {
	if t.Finished() {
		return nil, ErrTxDone
	}

	name := "sp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("%w: savepoint: %v", ErrQuery, err)
	}

	sp := &SQLTx{id: name, name: name, tx: t.tx, parent: parent, root: t.root}

	root := t.root
	root.mu.Lock()
	defer root.mu.Unlock()

	var handle Tx = sp
	if root.intercept != nil {
		handle = root.intercept(sp)
	}
	t.children = append(t.children, handle)
	root.opened = append(root.opened, sp)
	return handle, nil
}

// Commit commits a root or releases a savepoint.
func (t *SQLTx) Commit(ctx context.Context) error {
	if t.Finished() {
		return ErrTxDone
	}
	if t.isRoot() {
		err := t.tx.Commit()
		t.markFinished()
		if err != nil {
			return fmt.Errorf("%w: commit: %v", ErrQuery, err)
		}
		return nil
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+t.name); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrQuery, err)
	}
	t.markFinished()
	return nil
}

// Rollback rolls back a root, or rolls back to and releases a savepoint.
func (t *SQLTx) Rollback(ctx context.Context) error {
	if t.Finished() {
		return ErrTxDone
	}
	if t.isRoot() {
		err := t.tx.Rollback()
		t.markFinished()
		if err != nil {
			return fmt.Errorf("%w: rollback: %v", ErrQuery, err)
		}
		return nil
	}

	if _, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+t.name); err != nil {
		return fmt.Errorf("%w: rollback to savepoint: %v", ErrQuery, err)
	}
	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+t.name); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrQuery, err)
	}
	t.markFinished()
	return nil
}

func (t *SQLTx) isRoot() bool {
	return t.root == t
}

// markFinished finishes t together with every savepoint opened after it,
// since the database discards those along with it.
func (t *SQLTx) markFinished() {
	root := t.root
	root.mu.Lock()
	defer root.mu.Unlock()

	t.finished = true
	if t.isRoot() {
		for _, sp := range root.opened {
			sp.finished = true
		}
		return
	}
	seen := false
	for _, sp := range root.opened {
		if sp == t {
			seen = true
			continue
		}
		if seen {
			sp.finished = true
		}
	}
}
