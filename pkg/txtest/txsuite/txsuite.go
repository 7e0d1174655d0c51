// Package txsuite runs testify suites inside sandboxed transactions.
//
// Embed *Suite in a testify suite. The whole suite runs in one root
// transaction and every test method in a savepoint of it:
//
//	type UsersSuite struct {
//		*txsuite.Suite
//		users *repository.UserRepository
//	}
//
//	func (s *UsersSuite) TestCreate() {
//		_, err := s.users.Create(s.Ctx(), req)
//		s.Require().NoError(err)
//	}
//
//	func TestUsers(t *testing.T) {
//		suite.Run(t, &UsersSuite{Suite: txsuite.New(h), users: users})
//	}
//
// A suite that defines its own SetupSuite, SetupTest, TearDownTest or
// TearDownSuite must call the embedded method.
package txsuite

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/forgo/txsandbox/pkg/txtest"
)

// Suite is a testify suite bound to a Harness.
type Suite struct {
	suite.Suite

	harness  *txtest.Harness
	suiteCtx context.Context
	testCtx  context.Context
}

// New returns a Suite opening its boundaries through h.
func New(h *txtest.Harness) *Suite {
	return &Suite{harness: h}
}

// Harness returns the harness the suite was created with.
func (s *Suite) Harness() *txtest.Harness {
	return s.harness
}

// Ctx returns the context of the running test, or of the suite outside of
// a test. Queries issued with it join the current transaction.
func (s *Suite) Ctx() context.Context {
	if s.testCtx != nil {
		return s.testCtx
	}
	return s.suiteCtx
}

// SetupSuite opens the suite's root transaction.
func (s *Suite) SetupSuite() {
	s.Require().NotNil(s.harness, "txsuite: suite created without a harness")

	s.suiteCtx = s.harness.Namespace().Fork(context.Background())
	_, err := s.harness.Manager().Open(s.suiteCtx, s.T().Name())
	s.Require().NoError(err, "txsuite: open suite transaction")
}

// SetupTest opens a savepoint for the test.
func (s *Suite) SetupTest() {
	s.testCtx = s.harness.Namespace().Fork(s.suiteCtx)
	_, err := s.harness.Manager().Open(s.testCtx, s.T().Name())
	s.Require().NoError(err, "txsuite: open test savepoint")
}

// TearDownTest resolves the test's savepoint.
func (s *Suite) TearDownTest() {
	ctx := s.testCtx
	s.testCtx = nil
	_, err := s.harness.Manager().Stop(ctx, s.T().Failed(), s.T().Name())
	s.NoError(err, "txsuite: stop test savepoint")
}

// TearDownSuite resolves the suite's root transaction.
func (s *Suite) TearDownSuite() {
	_, err := s.harness.Manager().Stop(s.suiteCtx, s.T().Failed(), s.T().Name())
	s.NoError(err, "txsuite: stop suite transaction")
}
