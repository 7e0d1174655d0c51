package database

// Batch transactions for SurrealDB.
//
// A root SurrealTx accumulates statements and runs them atomically through a
// TxBuilder on commit. A savepoint is a nested batch: committing it folds its
// statements into the parent, rolling it back discards them.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
// This prevents variable name collisions when combining queries from different sources.
//
// Example: Two queries both using $email get namespaced to $v1_email and $v2_email.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
	varCounter uint64
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add adds a statement to the transaction, namespacing variables to avoid collisions.
// Returns the original-to-namespaced variable mapping.
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) map[string]string {
	varMapping := make(map[string]string)
	newQuery := query

	for varName, varValue := range vars {
		counter := atomic.AddUint64(&tb.varCounter, 1)
		newVarName := fmt.Sprintf("v%d_%s", counter, varName)

		newQuery = strings.ReplaceAll(newQuery, "$"+varName, "$"+newVarName)

		tb.vars[newVarName] = varValue
		varMapping[varName] = newVarName
	}

	tb.statements = append(tb.statements, newQuery)
	return varMapping
}

// Len returns the number of statements added so far.
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

type batchStatement struct {
	query string
	vars  map[string]interface{}
}

// SurrealTx is a batch transaction or nested batch.
type SurrealTx struct {
	id        string
	engine    *Surreal
	parent    Tx
	root      *SurrealTx
	isolation IsolationLevel

	// guarded by root.mu
	finished   bool
	statements []batchStatement
	children   []Tx
	intercept  Interceptor
	opened     []*SurrealTx

	mu sync.Mutex
}

func (t *SurrealTx) ID() string { return t.id }

func (t *SurrealTx) Parent() Tx { return t.parent }

func (t *SurrealTx) Finished() bool {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	return t.finished
}

func (t *SurrealTx) Savepoints() []Tx {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	out := make([]Tx, len(t.children))
	copy(out, t.children)
	return out
}

func (t *SurrealTx) InterceptSavepoints(fn Interceptor) {
	t.root.mu.Lock()
	t.root.intercept = fn
	t.root.mu.Unlock()
}

// Add queues a statement on this batch.
func (t *SurrealTx) Add(query string, vars map[string]interface{}) error {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	if t.finished {
		return ErrTxDone
	}
	t.statements = append(t.statements, batchStatement{query: query, vars: vars})
	return nil
}

// Pending returns the number of statements queued on this batch.
func (t *SurrealTx) Pending() int {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	return len(t.statements)
}

func (t *SurrealTx) savepoint(parent Tx) (Tx, error) {
	root := t.root
	root.mu.Lock()
	defer root.mu.Unlock()

	if t.finished {
		return nil, ErrTxDone
	}

	sp := &SurrealTx{
		id:        fmt.Sprintf("%s/%d", root.id, len(root.opened)+1),
		engine:    t.engine,
		parent:    parent,
		root:      root,
		isolation: t.isolation,
	}
	var handle Tx = sp
	if root.intercept != nil {
		handle = root.intercept(sp)
	}
	t.children = append(t.children, handle)
	root.opened = append(root.opened, sp)
	return handle, nil
}

// innermost returns the newest unfinished batch of the root.
func (t *SurrealTx) innermost() *SurrealTx {
	t.root.mu.Lock()
	defer t.root.mu.Unlock()
	if t.root.finished {
		return nil
	}
	for i := len(t.root.opened) - 1; i >= 0; i-- {
		if !t.root.opened[i].finished {
			return t.root.opened[i]
		}
	}
	return t.root
}

// Commit runs a root batch atomically, or folds a savepoint into its parent.
func (t *SurrealTx) Commit(ctx context.Context) error {
	root := t.root
	root.mu.Lock()
	if t.finished {
		root.mu.Unlock()
		return ErrTxDone
	}

	if t != root {
		parent, _ := Unwrap(t.parent).(*SurrealTx)
		if parent == nil || parent.finished {
			root.mu.Unlock()
			return ErrTxDone
		}
		parent.statements = append(parent.statements, t.statements...)
		t.statements = nil
		t.finished = true
		root.mu.Unlock()
		return nil
	}

	tb := NewTxBuilder()
	for _, stmt := range t.statements {
		tb.Add(stmt.query, stmt.vars)
	}
	t.finishAllLocked()
	root.mu.Unlock()

	query, vars := tb.Build()
	if query == "" {
		return nil
	}
	if _, err := t.engine.Query(ctx, query, vars); err != nil {
		return fmt.Errorf("%w: commit failed: %v", ErrQuery, err)
	}
	return nil
}

// Rollback discards the batch. Nothing has reached the database yet.
func (t *SurrealTx) Rollback(_ context.Context) error {
	root := t.root
	root.mu.Lock()
	defer root.mu.Unlock()
	if t.finished {
		return ErrTxDone
	}
	t.statements = nil
	if t == root {
		t.finishAllLocked()
		return nil
	}
	t.finished = true
	return nil
}

func (t *SurrealTx) finishAllLocked() {
	t.finished = true
	t.statements = nil
	for _, sp := range t.opened {
		sp.finished = true
		sp.statements = nil
	}
}
