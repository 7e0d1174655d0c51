package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgo/txsandbox/internal/ambient"
	"github.com/forgo/txsandbox/internal/database"
)

var (
	// ErrMissingEngine is returned by New without a database engine.
	ErrMissingEngine = errors.New("sandbox: database engine is required")

	// ErrNoTransaction means Stop ran in a chain that never opened a
	// boundary. It points at mismatched setup and teardown hooks.
	ErrNoTransaction = errors.New("sandbox: no transaction in context")
)

// resolvedKey remembers the last root resolved in a chain so a repeated
// Stop on the same boundary stays a no-op.
const resolvedKey = database.TransactionKey + ".resolved"

// descriptorKey holds the descriptor of the newest boundary opened in a
// chain. Forks inherit it until they open their own.
const descriptorKey = database.TransactionKey + ".descriptor"

// Config configures a Manager.
type Config struct {
	Engine          database.Engine
	CommitOnFailure bool
	// Notifier is created when nil.
	Notifier *Notifier
	// Logger discards when nil.
	Logger *slog.Logger
}

// Manager opens and resolves boundaries against the ambient transaction.
type Manager struct {
	engine          database.Engine
	ns              *ambient.Namespace
	commitOnFailure bool
	events          *Notifier
	logger          *slog.Logger
}

// New validates cfg and returns a Manager.
func New(cfg Config) (*Manager, error) {
	if cfg.Engine == nil {
		return nil, ErrMissingEngine
	}
	ns := cfg.Engine.Namespace()
	if ns == nil {
		return nil, database.ErrNoNamespace
	}

	events := cfg.Notifier
	if events == nil {
		events = NewNotifier()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Manager{
		engine:          cfg.Engine,
		ns:              ns,
		commitOnFailure: cfg.CommitOnFailure,
		events:          events,
		logger:          logger,
	}, nil
}

func (m *Manager) Events() *Notifier             { return m.events }
func (m *Manager) Namespace() *ambient.Namespace { return m.ns }
func (m *Manager) CommitOnFailure() bool         { return m.commitOnFailure }

// Current returns the transaction held by the chain of ctx, or nil.
func (m *Manager) Current(ctx context.Context) (database.Tx, error) {
	v, err := m.ns.Get(ctx, database.TransactionKey)
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	tx, _ := v.(database.Tx)
	return tx, nil
}

// Open begins a root transaction when the chain has none, and a savepoint
// under the chain's root otherwise. The chain keeps pointing at the root.
func (m *Manager) Open(ctx context.Context, descriptor string) (database.Tx, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	if current == nil {
		tx, err := m.engine.Begin(ctx, database.TxOptions{Isolation: database.ReadUncommitted})
		if err != nil {
			return nil, fmt.Errorf("sandbox: open %q: %w", descriptor, err)
		}
		tx.InterceptSavepoints(m.guard(descriptor))
		if err := m.ns.Set(ctx, database.TransactionKey, tx); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("sandbox: %w", err)
		}
		_ = m.ns.Set(ctx, resolvedKey, nil)
		_ = m.ns.Set(ctx, descriptorKey, descriptor)
		m.started(tx, descriptor)
		return tx, nil
	}

	tx, err := m.engine.Begin(ctx, database.TxOptions{Parent: current, Isolation: database.ReadUncommitted})
	if err != nil {
		return nil, fmt.Errorf("sandbox: open savepoint %q: %w", descriptor, err)
	}
	if g, ok := tx.(*guardedTx); ok {
		g.descriptor = descriptor
		g.owned = true
	}
	_ = m.ns.Set(ctx, descriptorKey, descriptor)
	m.started(tx, descriptor)
	return tx, nil
}

// Stop resolves the innermost unresolved handle of the chain's root. It
// commits when failed is set and commit-on-failure is enabled, and rolls
// back otherwise.
//
// Boundaries are resolved as a stack, so a repeated Stop is a no-op only for
// a root boundary. Stopping a savepoint boundary twice resolves the next
// handle down, which is the enclosing root once every savepoint is finished.
// A root finished outside the manager is returned unchanged and released
// from the chain.
func (m *Manager) Stop(ctx context.Context, failed bool, descriptor string) (database.Tx, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		if v, _ := m.ns.Get(ctx, resolvedKey); v != nil {
			if tx, ok := v.(database.Tx); ok {
				return tx, nil
			}
		}
		return nil, fmt.Errorf("%w: stop %q", ErrNoTransaction, descriptor)
	}

	ended := LastUnresolved(current)
	if ended.Finished() {
		if ended.Parent() == nil {
			m.release(ctx, ended)
		}
		return ended, nil
	}

	commit := failed && m.commitOnFailure
	raw := database.Unwrap(ended)
	if commit {
		err = raw.Commit(ctx)
	} else {
		err = raw.Rollback(ctx)
	}

	if ended.Parent() == nil && ended.Finished() {
		m.release(ctx, ended)
	}
	if err != nil {
		return nil, fmt.Errorf("sandbox: stop %q: %w", descriptor, err)
	}

	if commit {
		m.logger.Debug("transaction committed", "id", ended.ID(), "descriptor", descriptor)
		m.events.Emit(EventCommitted, ended, descriptor)
	} else {
		m.logger.Debug("transaction rolled back", "id", ended.ID(), "descriptor", descriptor)
		m.events.Emit(EventRolledBack, ended, descriptor)
	}
	return ended, nil
}

// release clears the chain's slot after its root finished.
func (m *Manager) release(ctx context.Context, root database.Tx) {
	_ = m.ns.Set(ctx, database.TransactionKey, nil)
	_ = m.ns.Set(ctx, resolvedKey, root)
}

func (m *Manager) started(tx database.Tx, descriptor string) {
	m.logger.Debug("transaction started",
		"id", tx.ID(),
		"descriptor", descriptor,
		"savepoint", tx.Parent() != nil,
	)
	m.events.Emit(EventTransactionStarted, tx, descriptor)
}

// LastUnresolved returns the newest unfinished savepoint of root, or root
// itself when every savepoint is finished.
func LastUnresolved(root database.Tx) database.Tx {
	sps := root.Savepoints()
	for i := len(sps) - 1; i >= 0; i-- {
		if !sps[i].Finished() {
			return sps[i]
		}
	}
	return root
}
