package instrument

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/suite"
)

// fakeBoundary records calls in order.
type fakeBoundary struct {
	calls []string
}

func (f *fakeBoundary) Open(_ context.Context, descriptor string) (database.Tx, error) {
	f.calls = append(f.calls, "open "+descriptor)
	return nil, nil
}

func (f *fakeBoundary) Stop(_ context.Context, failed bool, descriptor string) (database.Tx, error) {
	f.calls = append(f.calls, fmt.Sprintf("stop %s failed=%t", descriptor, failed))
	return nil, nil
}

func (f *fakeBoundary) user(step string) suite.HookFunc {
	return func(_ context.Context, cur suite.Runnable) error {
		f.calls = append(f.calls, step+" "+cur.FullTitle())
		return nil
	}
}

func buildTree(f *fakeBoundary) *suite.Suite {
	root := suite.New()
	root.BeforeEach("user", f.user("user-before-each"))
	root.AfterEach("user", f.user("user-after-each"))
	root.Describe("Suite", func(s *suite.Suite) {
		s.Before("user", f.user("user-before-all"))
		s.After("user", f.user("user-after-all"))
		s.It("test1", func(context.Context, suite.T) {})
		s.It("test2", func(_ context.Context, t suite.T) { t.Errorf("broken") })
	})
	return root
}

func TestApply_RequiresBoundary(t *testing.T) {
	assert.ErrorIs(t, Apply(suite.New(), nil, nil, Options{}), ErrNoBoundary)
}

func TestApply_HookOrder(t *testing.T) {
	f := &fakeBoundary{}
	root := buildTree(f)

	require.NoError(t, Apply(root, f, nil, Options{
		WrapEachTest:        true,
		WrapEachNestedSuite: true,
		WrapNestedSuiteBody: true,
	}))
	suite.Run(context.Background(), suite.NewRecorder("root"), root)

	assert.Equal(t, []string{
		"open Suite",
		"open Suite beforeAll",
		"user-before-all Suite",
		"open Suite > test1",
		"user-before-each Suite > test1",
		"user-after-each Suite > test1",
		"stop Suite > test1 failed=false",
		"open Suite > test2",
		"user-before-each Suite > test2",
		"user-after-each Suite > test2",
		"stop Suite > test2 failed=true",
		"user-after-all Suite",
		"stop Suite beforeAll failed=true",
		"stop Suite failed=true",
	}, f.calls)
}

func TestApply_WithoutBodyBoundary(t *testing.T) {
	f := &fakeBoundary{}
	root := buildTree(f)

	require.NoError(t, Apply(root, f, nil, Options{WrapEachNestedSuite: true}))
	suite.Run(context.Background(), suite.NewRecorder("root"), root)

	assert.Equal(t, []string{
		"open Suite",
		"user-before-all Suite",
		"user-before-each Suite > test1",
		"user-after-each Suite > test1",
		"user-before-each Suite > test2",
		"user-after-each Suite > test2",
		"user-after-all Suite",
		"stop Suite failed=true",
	}, f.calls)
}

func TestApply_EachTestOnly(t *testing.T) {
	f := &fakeBoundary{}
	root := buildTree(f)

	require.NoError(t, Apply(root, f, nil, Options{WrapEachTest: true}))
	suite.Run(context.Background(), suite.NewRecorder("root"), root)

	assert.NotContains(t, f.calls, "open Suite")
	assert.Contains(t, f.calls, "open Suite > test1")
	assert.Contains(t, f.calls, "stop Suite > test2 failed=true")
}

func TestApply_IsIdempotent(t *testing.T) {
	f := &fakeBoundary{}
	root := buildTree(f)
	opts := Options{WrapEachTest: true, WrapEachNestedSuite: true}

	require.NoError(t, Apply(root, f, nil, opts))
	require.NoError(t, Apply(root, f, nil, opts))

	assert.Equal(t, 2, root.Hooks(suite.BeforeEachHook).Len())
	assert.Equal(t, 2, root.Suites()[0].Hooks(suite.BeforeAllHook).Len())
	assert.Equal(t, 2, root.Suites()[0].Hooks(suite.AfterAllHook).Len())
}

func TestApply_DeeplyNestedSuites(t *testing.T) {
	f := &fakeBoundary{}
	root := suite.New()
	root.Describe("A", func(s *suite.Suite) {
		s.Describe("B", func(s *suite.Suite) {
			s.It("leaf", func(context.Context, suite.T) {})
		})
	})

	require.NoError(t, Apply(root, f, nil, Options{WrapEachTest: true, WrapEachNestedSuite: true}))
	suite.Run(context.Background(), suite.NewRecorder("root"), root)

	assert.Equal(t, []string{
		"open A",
		"open A > B",
		"open A > B > leaf",
		"stop A > B > leaf failed=false",
		"stop A > B failed=false",
		"stop A failed=false",
	}, f.calls)
}

type forkCounter struct {
	forks int
}

func (c *forkCounter) Fork(ctx context.Context) context.Context {
	c.forks++
	return ctx
}

func TestApply_ScopesWrappedNodes(t *testing.T) {
	f := &fakeBoundary{}
	root := buildTree(f)
	sc := &forkCounter{}

	require.NoError(t, Apply(root, f, sc, Options{WrapEachTest: true, WrapEachNestedSuite: true}))
	suite.Run(context.Background(), suite.NewRecorder("root"), root)

	assert.Equal(t, 3, sc.forks, "one suite and two tests")
}
