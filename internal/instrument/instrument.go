package instrument

import (
	"context"
	"errors"
	"sync"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/suite"
)

// ErrNoBoundary is returned by Apply without a Boundary.
var ErrNoBoundary = errors.New("instrument: boundary is required")

// BodySuffix is appended to a suite's title to describe the boundary around
// the suite's own hooks and tests.
const BodySuffix = " beforeAll"

// Boundary opens and stops transaction boundaries in a chain.
// *sandbox.Manager implements it.
type Boundary interface {
	Open(ctx context.Context, descriptor string) (database.Tx, error)
	Stop(ctx context.Context, failed bool, descriptor string) (database.Tx, error)
}

// Options selects which nodes get a boundary.
type Options struct {
	// WrapEachTest gives every test its own boundary.
	WrapEachTest bool
	// WrapEachNestedSuite gives every non-root suite a boundary.
	WrapEachNestedSuite bool
	// WrapNestedSuiteBody adds a second boundary inside each nested suite's
	// one. Only used with WrapEachNestedSuite.
	WrapNestedSuiteBody bool
}

type appliedKey struct{}

// opened remembers which boundaries a before hook actually opened, so the
// matching after hook never resolves a boundary that belongs to an ancestor.
type opened struct {
	mu  sync.Mutex
	set map[openKey]struct{}
}

type openKey struct {
	node suite.Runnable
	body bool
}

func newOpened() *opened {
	return &opened{set: make(map[openKey]struct{})}
}

func (o *opened) open(ctx context.Context, b Boundary, cur suite.Runnable, body bool, descriptor string) error {
	if _, err := b.Open(ctx, descriptor); err != nil {
		return err
	}
	o.mu.Lock()
	o.set[openKey{cur, body}] = struct{}{}
	o.mu.Unlock()
	return nil
}

func (o *opened) stop(ctx context.Context, b Boundary, cur suite.Runnable, body bool, descriptor string) error {
	k := openKey{cur, body}
	o.mu.Lock()
	_, ok := o.set[k]
	delete(o.set, k)
	o.mu.Unlock()
	if !ok {
		return nil
	}
	_, err := b.Stop(ctx, cur.Failed(), descriptor)
	return err
}

// Apply instruments the tree under root. Calling it again for the same root
// does nothing. A nil scope leaves the runner's contexts unforked.
func Apply(root *suite.Suite, b Boundary, scope suite.Scoper, opts Options) error {
	if b == nil {
		return ErrNoBoundary
	}
	if !root.Mark(appliedKey{}) {
		return nil
	}

	track := newOpened()
	root.Walk(func(s *suite.Suite) {
		if opts.WrapEachTest {
			if s.Root() {
				wrapTests(s, b, track)
			}
			if scope != nil {
				for _, t := range s.Tests() {
					t.SetScope(scope)
				}
			}
		}
		if opts.WrapEachNestedSuite && !s.Root() {
			wrapSuite(s, b, track, opts.WrapNestedSuiteBody)
			if scope != nil {
				s.SetScope(scope)
			}
		}
	})
	return nil
}

func wrapTests(s *suite.Suite, b Boundary, track *opened) {
	s.Hooks(suite.BeforeEachHook).InsertFront(suite.Hook{
		Title: "transaction: open test",
		Fn: func(ctx context.Context, cur suite.Runnable) error {
			return track.open(ctx, b, cur, false, cur.FullTitle())
		},
	})
	s.Hooks(suite.AfterEachHook).InsertBack(suite.Hook{
		Title: "transaction: stop test",
		Fn: func(ctx context.Context, cur suite.Runnable) error {
			return track.stop(ctx, b, cur, false, cur.FullTitle())
		},
	})
}

func wrapSuite(s *suite.Suite, b Boundary, track *opened, body bool) {
	before := s.Hooks(suite.BeforeAllHook)
	after := s.Hooks(suite.AfterAllHook)

	before.InsertFront(suite.Hook{
		Title: "transaction: open suite",
		Fn: func(ctx context.Context, cur suite.Runnable) error {
			return track.open(ctx, b, cur, false, cur.FullTitle())
		},
	})
	if body {
		before.InsertAt(1, suite.Hook{
			Title: "transaction: open suite body",
			Fn: func(ctx context.Context, cur suite.Runnable) error {
				return track.open(ctx, b, cur, true, cur.FullTitle()+BodySuffix)
			},
		})
		after.InsertBack(suite.Hook{
			Title: "transaction: stop suite body",
			Fn: func(ctx context.Context, cur suite.Runnable) error {
				return track.stop(ctx, b, cur, true, cur.FullTitle()+BodySuffix)
			},
		})
	}
	after.InsertBack(suite.Hook{
		Title: "transaction: stop suite",
		Fn: func(ctx context.Context, cur suite.Runnable) error {
			return track.stop(ctx, b, cur, false, cur.FullTitle())
		},
	})
}
