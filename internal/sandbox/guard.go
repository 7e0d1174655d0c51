package sandbox

import (
	"context"

	"github.com/forgo/txsandbox/internal/database"
)

// guardedTx reports commits the manager did not ask for. The commit still
// goes through since the database cannot take it back.
//
// Savepoints the manager opened report their own descriptor. Savepoints
// opened by application code report the boundary running in the committing
// chain, falling back to the root's descriptor outside of it.
type guardedTx struct {
	database.Tx
	m          *Manager
	descriptor string
	// owned is set for savepoints opened by the manager.
	owned bool
}

func (m *Manager) guard(descriptor string) database.Interceptor {
	return func(sp database.Tx) database.Tx {
		return &guardedTx{Tx: sp, m: m, descriptor: descriptor}
	}
}

func (g *guardedTx) Unwrap() database.Tx {
	return g.Tx
}

func (g *guardedTx) Commit(ctx context.Context) error {
	if !g.m.commitOnFailure {
		descriptor := g.describe(ctx)
		g.m.logger.Warn("transaction commits are disabled in order for tests to use the transactional pattern",
			"id", g.ID(),
			"descriptor", descriptor,
		)
		g.m.events.Emit(EventSandboxBreached, g, descriptor)
	}
	return g.Tx.Commit(ctx)
}

func (g *guardedTx) describe(ctx context.Context) string {
	if g.owned {
		return g.descriptor
	}
	if v, err := g.m.ns.Get(ctx, descriptorKey); err == nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return g.descriptor
}
