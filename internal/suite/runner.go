package suite

import (
	"context"
)

// Run executes the tree rooted at root. The root's hooks and tests run
// directly on t, every child suite and test in its own subtest.
func Run(ctx context.Context, t T, root *Suite) {
	runSuite(ctx, t, root)
}

func runSuite(ctx context.Context, t T, s *Suite) {
	if s.scope != nil {
		ctx = s.scope.Fork(ctx)
	}

	ready := true
	for _, h := range s.hooks[BeforeAllHook].All() {
		if err := h.Fn(ctx, s); err != nil {
			s.hookFailed = true
			t.Errorf("%s hook %q: %v", BeforeAllHook, h.Title, err)
			ready = false
			break
		}
	}

	if ready {
		for _, test := range s.tests {
			runTest(ctx, t, test)
		}
		for _, child := range s.suites {
			t.Run(child.title, func(t T) {
				runSuite(ctx, t, child)
			})
		}
	}

	for _, h := range s.hooks[AfterAllHook].All() {
		if err := h.Fn(ctx, s); err != nil {
			s.hookFailed = true
			t.Errorf("%s hook %q: %v", AfterAllHook, h.Title, err)
		}
	}
}

func runTest(ctx context.Context, t T, test *Test) {
	if test.fn == nil {
		t.Run(test.title, func(t T) {
			t.Skip("pending")
		})
		return
	}

	t.Run(test.title, func(t T) {
		if test.scope != nil {
			ctx = test.scope.Fork(ctx)
		}
		test.t = t

		lineage := test.parent.lineage()
		started := 0

		// Deferred so that FailNow and SkipNow in the body still reach the
		// after-each hooks.
		defer func() {
			for i := started - 1; i >= 0; i-- {
				for _, h := range lineage[i].hooks[AfterEachHook].All() {
					if err := h.Fn(ctx, test); err != nil {
						t.Errorf("%s hook %q: %v", AfterEachHook, h.Title, err)
					}
				}
			}
			test.finish(t)
		}()

		for _, level := range lineage {
			started++
			for _, h := range level.hooks[BeforeEachHook].All() {
				if err := h.Fn(ctx, test); err != nil {
					t.Errorf("%s hook %q: %v", BeforeEachHook, h.Title, err)
					return
				}
			}
		}

		test.fn(ctx, t)
	})
}

func (test *Test) finish(t T) {
	switch {
	case t.Failed():
		test.state = Failed
	case t.Skipped():
		test.state = Skipped
	default:
		test.state = Passed
	}
	test.t = nil
}
