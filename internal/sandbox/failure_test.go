package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/txsandbox/internal/ambient"
	"github.com/forgo/txsandbox/internal/database"
)

// failingEngine wraps a real engine and rejects selected operations.
type failingEngine struct {
	database.Engine
	beginErr    error
	rollbackErr error
}

func (e *failingEngine) Begin(ctx context.Context, opts database.TxOptions) (database.Tx, error) {
	if e.beginErr != nil {
		return nil, e.beginErr
	}
	tx, err := e.Engine.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, engine: e}, nil
}

type failingTx struct {
	database.Tx
	engine *failingEngine
}

func (t *failingTx) Rollback(ctx context.Context) error {
	if t.engine.rollbackErr != nil {
		return t.engine.rollbackErr
	}
	return t.Tx.Rollback(ctx)
}

func newSurrealEngine() *database.Surreal {
	engine := database.NewSurreal(database.Config{})
	engine.UseNamespace(ambient.NewRegistry().CreateNamespace("failures"))
	return engine
}

func TestManager_OpenPropagatesEngineError(t *testing.T) {
	boom := errors.New("engine refused")
	engine := &failingEngine{Engine: newSurrealEngine(), beginErr: boom}

	m, err := New(Config{Engine: engine})
	require.NoError(t, err)

	var started int
	m.Events().Subscribe(EventTransactionStarted, func(database.Tx, string) { started++ })

	ctx := m.Namespace().Fork(context.Background())
	_, err = m.Open(ctx, "Suite")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, started)

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestManager_StopPropagatesRollbackError(t *testing.T) {
	boom := errors.New("rollback rejected")
	engine := &failingEngine{Engine: newSurrealEngine()}

	m, err := New(Config{Engine: engine})
	require.NoError(t, err)
	ctx := m.Namespace().Fork(context.Background())

	_, err = m.Open(ctx, "Suite")
	require.NoError(t, err)

	engine.rollbackErr = boom
	_, err = m.Stop(ctx, false, "Suite")
	assert.ErrorIs(t, err, boom)
}

func TestManager_WorksWithBatchEngine(t *testing.T) {
	engine := newSurrealEngine()
	m, err := New(Config{Engine: engine})
	require.NoError(t, err)
	ctx := m.Namespace().Fork(context.Background())

	root, err := m.Open(ctx, "Suite")
	require.NoError(t, err)
	_, err = m.Open(ctx, "Suite > test")
	require.NoError(t, err)
	require.NoError(t, engine.Execute(ctx, "CREATE item", nil))

	_, err = m.Stop(ctx, false, "Suite > test")
	require.NoError(t, err)
	assert.Zero(t, database.Unwrap(root).(*database.SurrealTx).Pending())

	_, err = m.Stop(ctx, false, "Suite")
	require.NoError(t, err)
	assert.True(t, root.Finished())
}
