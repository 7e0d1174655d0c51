package instrument

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/sandbox"
	"github.com/forgo/txsandbox/internal/suite"
	"github.com/forgo/txsandbox/internal/testing/testdb"
)

type eventLog struct {
	lines []string
}

func (l *eventLog) attach(n *sandbox.Notifier) {
	for _, ev := range []sandbox.Event{
		sandbox.EventTransactionStarted,
		sandbox.EventCommitted,
		sandbox.EventRolledBack,
		sandbox.EventSandboxBreached,
	} {
		ev := ev
		n.Subscribe(ev, func(_ database.Tx, descriptor string) {
			l.lines = append(l.lines, fmt.Sprintf("%s %s", ev, descriptor))
		})
	}
}

func newManager(t *testing.T, commitOnFailure bool) (*sandbox.Manager, *testdb.TestDB, *eventLog) {
	t.Helper()

	tdb := testdb.New(t)
	tdb.MustExec(`CREATE TABLE items (name TEXT NOT NULL)`)

	m, err := sandbox.New(sandbox.Config{Engine: tdb.Engine, CommitOnFailure: commitOnFailure})
	require.NoError(t, err)

	log := &eventLog{}
	log.attach(m.Events())
	return m, tdb, log
}

func TestApply_RollsBackEveryTest(t *testing.T) {
	m, tdb, log := newManager(t, false)

	exec := func(ctx context.Context, st suite.T, query string) {
		_, err := tdb.Engine.Querier(ctx).ExecContext(ctx, query)
		require.NoError(st, err)
	}

	var counts []int
	root := suite.New()
	root.Describe("Items", func(s *suite.Suite) {
		s.Before("seed", func(ctx context.Context, _ suite.Runnable) error {
			_, err := tdb.Engine.Querier(ctx).ExecContext(ctx, `INSERT INTO items (name) VALUES ('seed')`)
			return err
		})
		s.It("inserts", func(ctx context.Context, st suite.T) {
			exec(ctx, st, `INSERT INTO items (name) VALUES ('a')`)
			counts = append(counts, tdb.CountIn(ctx, "items"))
		})
		s.It("sees only the seed", func(ctx context.Context, _ suite.T) {
			counts = append(counts, tdb.CountIn(ctx, "items"))
		})
	})
	root.Describe("Other", func(s *suite.Suite) {
		s.It("sees nothing", func(ctx context.Context, _ suite.T) {
			counts = append(counts, tdb.CountIn(ctx, "items"))
		})
	})

	require.NoError(t, Apply(root, m, m.Namespace(), Options{
		WrapEachTest:        true,
		WrapEachNestedSuite: true,
		WrapNestedSuiteBody: true,
	}))

	rec := suite.NewRecorder("root")
	suite.Run(m.Namespace().Fork(tdb.Ctx()), rec, root)

	require.False(t, rec.Failed())
	assert.Equal(t, []int{2, 1, 0}, counts)
	assert.Equal(t, 0, tdb.Count("items"))
	assert.Equal(t, []string{
		"transaction-started Items",
		"transaction-started Items beforeAll",
		"transaction-started Items > inserts",
		"rolled-back Items > inserts",
		"transaction-started Items > sees only the seed",
		"rolled-back Items > sees only the seed",
		"rolled-back Items beforeAll",
		"rolled-back Items",
		"transaction-started Other",
		"transaction-started Other beforeAll",
		"transaction-started Other > sees nothing",
		"rolled-back Other > sees nothing",
		"rolled-back Other beforeAll",
		"rolled-back Other",
	}, log.lines)
}

func TestApply_CommitOnFailureKeepsFailingTestRows(t *testing.T) {
	m, tdb, log := newManager(t, true)

	var seen int
	root := suite.New()
	root.Describe("Suite", func(s *suite.Suite) {
		s.It("test1", func(ctx context.Context, st suite.T) {
			_, err := tdb.Engine.Querier(ctx).ExecContext(ctx, `INSERT INTO items (name) VALUES ('kept')`)
			require.NoError(st, err)
			st.Errorf("expected failure")
		})
		s.It("test2", func(ctx context.Context, _ suite.T) {
			seen = tdb.CountIn(ctx, "items")
		})
	})

	require.NoError(t, Apply(root, m, m.Namespace(), Options{WrapEachTest: true, WrapEachNestedSuite: true}))
	suite.Run(m.Namespace().Fork(tdb.Ctx()), suite.NewRecorder("root"), root)

	assert.Equal(t, 1, seen, "the committed savepoint stays visible to later tests of the suite")
	assert.Equal(t, []string{
		"transaction-started Suite",
		"transaction-started Suite > test1",
		"committed Suite > test1",
		"transaction-started Suite > test2",
		"rolled-back Suite > test2",
		"committed Suite",
	}, log.lines)
	assert.Equal(t, 1, tdb.Count("items"), "a failing suite commits its root")
}

func TestApply_TopLevelTestsGetTheirOwnRoot(t *testing.T) {
	m, tdb, log := newManager(t, false)

	var roots []database.Tx
	root := suite.New()
	for i := 0; i < 2; i++ {
		root.It(fmt.Sprintf("test%d", i), func(ctx context.Context, st suite.T) {
			tx, err := m.Current(ctx)
			require.NoError(st, err)
			require.NotNil(st, tx)
			roots = append(roots, tx)
		})
	}

	require.NoError(t, Apply(root, m, m.Namespace(), Options{WrapEachTest: true}))
	rec := suite.NewRecorder("root")
	suite.Run(m.Namespace().Fork(tdb.Ctx()), rec, root)

	require.False(t, rec.Failed())
	require.Len(t, roots, 2)
	assert.NotSame(t, roots[0], roots[1])
	assert.Nil(t, roots[0].Parent())
	assert.Equal(t, []string{
		"transaction-started test0",
		"rolled-back test0",
		"transaction-started test1",
		"rolled-back test1",
	}, log.lines)
}

var errBegin = errors.New("begin rejected")

// flakyEngine rejects the nth Begin.
type flakyEngine struct {
	*database.SQL
	failAt int
	calls  int
}

func (e *flakyEngine) Begin(ctx context.Context, opts database.TxOptions) (database.Tx, error) {
	e.calls++
	if e.calls == e.failAt {
		return nil, errBegin
	}
	return e.SQL.Begin(ctx, opts)
}

func newFlakyManager(t *testing.T, failAt int) (*sandbox.Manager, *testdb.TestDB, *eventLog) {
	t.Helper()

	tdb := testdb.New(t)
	m, err := sandbox.New(sandbox.Config{Engine: &flakyEngine{SQL: tdb.Engine, failAt: failAt}})
	require.NoError(t, err)

	log := &eventLog{}
	log.attach(m.Events())
	return m, tdb, log
}

func TestApply_FailedSuiteOpenLeavesSiblingsAlone(t *testing.T) {
	m, tdb, log := newFlakyManager(t, 2)

	var ran []string
	root := suite.New()
	root.Describe("A", func(s *suite.Suite) {
		s.Describe("B", func(s *suite.Suite) {
			s.It("b1", func(context.Context, suite.T) { ran = append(ran, "b1") })
		})
		s.Describe("C", func(s *suite.Suite) {
			s.It("c1", func(context.Context, suite.T) { ran = append(ran, "c1") })
		})
	})

	require.NoError(t, Apply(root, m, m.Namespace(), Options{WrapEachTest: true, WrapEachNestedSuite: true}))
	rec := suite.NewRecorder("root")
	suite.Run(m.Namespace().Fork(tdb.Ctx()), rec, root)

	assert.True(t, rec.Failed(), "the rejected open fails its own suite")
	assert.Equal(t, []string{"c1"}, ran)
	assert.Equal(t, []string{
		"transaction-started A",
		"transaction-started A > C",
		"transaction-started A > C > c1",
		"rolled-back A > C > c1",
		"rolled-back A > C",
		"rolled-back A",
	}, log.lines)
}

func TestApply_FailedTestOpenLeavesSuiteBoundaryAlone(t *testing.T) {
	m, tdb, log := newFlakyManager(t, 2)

	var ran []string
	root := suite.New()
	root.Describe("Suite", func(s *suite.Suite) {
		s.It("t1", func(context.Context, suite.T) { ran = append(ran, "t1") })
		s.It("t2", func(context.Context, suite.T) { ran = append(ran, "t2") })
	})

	require.NoError(t, Apply(root, m, m.Namespace(), Options{WrapEachTest: true, WrapEachNestedSuite: true}))
	rec := suite.NewRecorder("root")
	suite.Run(m.Namespace().Fork(tdb.Ctx()), rec, root)

	assert.True(t, rec.Failed())
	assert.Equal(t, []string{"t2"}, ran)
	assert.Equal(t, suite.Failed, root.Suites()[0].Tests()[0].State())
	assert.Equal(t, suite.Passed, root.Suites()[0].Tests()[1].State())
	assert.Equal(t, []string{
		"transaction-started Suite",
		"transaction-started Suite > t2",
		"rolled-back Suite > t2",
		"rolled-back Suite",
	}, log.lines)
}
