package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/repository"
)

func TestGuard_ForcedCommitEmitsDiagnostic(t *testing.T) {
	m, tdb, rec := setup(t, false)
	ctx := tdb.Chain()

	_, err := m.Open(ctx, "Suite")
	require.NoError(t, err)
	sp, err := m.Open(ctx, "Suite > commits")
	require.NoError(t, err)

	require.NoError(t, sp.Commit(ctx), "the commit itself still goes through")
	assert.True(t, sp.Finished())

	events := rec.all()
	last := events[len(events)-1]
	assert.Equal(t, EventSandboxBreached, last.event)
	assert.Same(t, sp, last.tx)
	assert.Equal(t, "Suite > commits", last.descriptor)

	_, err = m.Stop(ctx, false, "Suite")
	require.NoError(t, err)
}

func TestGuard_UserSavepointInRootChain(t *testing.T) {
	m, tdb, rec := setup(t, false)
	ctx := tdb.Chain()

	root, err := m.Open(ctx, "Suite")
	require.NoError(t, err)

	sp, err := tdb.Engine.Begin(ctx, database.TxOptions{Parent: root})
	require.NoError(t, err)
	require.NoError(t, sp.Commit(ctx))

	events := rec.all()
	assert.Equal(t, recorded{EventSandboxBreached, sp, "Suite"}, events[len(events)-1])

	_, err = m.Stop(ctx, false, "Suite")
	require.NoError(t, err)
}

func TestGuard_UserSavepointReportsRunningBoundary(t *testing.T) {
	m, tdb, rec := setup(t, false)
	suiteCtx := tdb.Chain()

	_, err := m.Open(suiteCtx, "Suite")
	require.NoError(t, err)

	testCtx := m.Namespace().Fork(suiteCtx)
	_, err = m.Open(testCtx, "Suite > test")
	require.NoError(t, err)

	err = repository.WithTransaction(testCtx, tdb.Engine, func(ctx context.Context) error {
		insert(t, tdb, ctx, "x")
		return nil
	})
	require.NoError(t, err)

	events := rec.all()
	last := events[len(events)-1]
	assert.Equal(t, EventSandboxBreached, last.event)
	assert.Equal(t, "Suite > test", last.descriptor)

	_, err = m.Stop(testCtx, false, "Suite > test")
	require.NoError(t, err)
	_, err = m.Stop(suiteCtx, false, "Suite")
	require.NoError(t, err)
	assert.Equal(t, 0, tdb.Count("items"))
}

func TestGuard_SanctionedCommitIsSilent(t *testing.T) {
	m, tdb, rec := setup(t, true)
	ctx := tdb.Chain()

	_, err := m.Open(ctx, "Suite")
	require.NoError(t, err)
	sp, err := m.Open(ctx, "Suite > fails")
	require.NoError(t, err)

	require.NoError(t, sp.Commit(ctx))
	_, err = m.Stop(ctx, true, "Suite")
	require.NoError(t, err)

	for _, e := range rec.all() {
		assert.NotEqual(t, EventSandboxBreached, e.event)
	}
}
