package suite

import (
	"context"
	"strings"
)

// Separator joins titles into a full title.
const Separator = " > "

// Runnable is the node a hook runs for: the current test for each-hooks,
// the suite itself for all-hooks.
type Runnable interface {
	Title() string
	FullTitle() string
	Failed() bool
}

// Scoper derives the context a node runs in.
type Scoper interface {
	Fork(ctx context.Context) context.Context
}

// HookFunc is the body of a hook. A returned error fails the enclosing test
// or suite.
type HookFunc func(ctx context.Context, cur Runnable) error

// TestFunc is the body of a test.
type TestFunc func(ctx context.Context, t T)

// Hook is a titled HookFunc.
type Hook struct {
	Title string
	Fn    HookFunc
}

// HookKind selects one of the four hook lists of a suite.
type HookKind int

const (
	BeforeAllHook HookKind = iota
	AfterAllHook
	BeforeEachHook
	AfterEachHook
)

func (k HookKind) String() string {
	switch k {
	case BeforeAllHook:
		return "before all"
	case AfterAllHook:
		return "after all"
	case BeforeEachHook:
		return "before each"
	case AfterEachHook:
		return "after each"
	default:
		return "unknown"
	}
}

// Hooks is an ordered hook list.
type Hooks struct {
	list []Hook
}

// InsertFront places h ahead of every registered hook.
func (h *Hooks) InsertFront(hook Hook) {
	h.list = append([]Hook{hook}, h.list...)
}

// InsertBack places h after every registered hook.
func (h *Hooks) InsertBack(hook Hook) {
	h.list = append(h.list, hook)
}

// InsertAt places hook at index i, clamped to the list bounds.
func (h *Hooks) InsertAt(i int, hook Hook) {
	if i < 0 {
		i = 0
	}
	if i > len(h.list) {
		i = len(h.list)
	}
	h.list = append(h.list[:i], append([]Hook{hook}, h.list[i:]...)...)
}

// All returns the hooks in execution order.
func (h *Hooks) All() []Hook {
	out := make([]Hook, len(h.list))
	copy(out, h.list)
	return out
}

func (h *Hooks) Len() int { return len(h.list) }

// State is the outcome of a test.
type State int

const (
	Pending State = iota
	Passed
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Test is a leaf of the tree.
type Test struct {
	title  string
	fn     TestFunc
	parent *Suite
	scope  Scoper

	state State
	t     T
}

func (t *Test) Title() string  { return t.title }
func (t *Test) Parent() *Suite { return t.parent }
func (t *Test) State() State   { return t.state }

// FullTitle joins the titles of the enclosing suites and the test.
func (t *Test) FullTitle() string {
	return join(t.parent.FullTitle(), t.title)
}

// Failed reports whether the test failed so far. While the test runs it
// reflects the live result of its T.
func (t *Test) Failed() bool {
	if t.state == Failed {
		return true
	}
	return t.t != nil && t.t.Failed()
}

// SetScope makes the runner fork the test's context through sc.
func (t *Test) SetScope(sc Scoper) { t.scope = sc }

// Suite is a node of the tree.
type Suite struct {
	title  string
	parent *Suite
	suites []*Suite
	tests  []*Test
	hooks  [4]Hooks
	scope  Scoper
	marks  map[any]struct{}

	hookFailed bool
}

// New creates a root suite.
func New() *Suite {
	return &Suite{}
}

func (s *Suite) Title() string      { return s.title }
func (s *Suite) Parent() *Suite     { return s.parent }
func (s *Suite) Root() bool         { return s.parent == nil }
func (s *Suite) Suites() []*Suite   { return s.suites }
func (s *Suite) Tests() []*Test     { return s.tests }
func (s *Suite) SetScope(sc Scoper) { s.scope = sc }

// Hooks returns the hook list of kind k.
func (s *Suite) Hooks(k HookKind) *Hooks {
	return &s.hooks[k]
}

// FullTitle joins the titles from the root down to s.
func (s *Suite) FullTitle() string {
	if s.parent == nil {
		return s.title
	}
	return join(s.parent.FullTitle(), s.title)
}

// Describe adds a child suite and calls fn to populate it.
func (s *Suite) Describe(title string, fn func(s *Suite)) *Suite {
	child := &Suite{title: title, parent: s}
	s.suites = append(s.suites, child)
	if fn != nil {
		fn(child)
	}
	return child
}

// It adds a test. A nil fn leaves the test pending.
func (s *Suite) It(title string, fn TestFunc) *Test {
	test := &Test{title: title, fn: fn, parent: s}
	s.tests = append(s.tests, test)
	return test
}

func (s *Suite) Before(title string, fn HookFunc) {
	s.hooks[BeforeAllHook].InsertBack(Hook{Title: title, Fn: fn})
}

func (s *Suite) After(title string, fn HookFunc) {
	s.hooks[AfterAllHook].InsertBack(Hook{Title: title, Fn: fn})
}

func (s *Suite) BeforeEach(title string, fn HookFunc) {
	s.hooks[BeforeEachHook].InsertBack(Hook{Title: title, Fn: fn})
}

func (s *Suite) AfterEach(title string, fn HookFunc) {
	s.hooks[AfterEachHook].InsertBack(Hook{Title: title, Fn: fn})
}

// Failed walks the subtree and reports whether any hook or test in it has
// failed.
func (s *Suite) Failed() bool {
	if s.hookFailed {
		return true
	}
	for _, t := range s.tests {
		if t.Failed() {
			return true
		}
	}
	for _, c := range s.suites {
		if c.Failed() {
			return true
		}
	}
	return false
}

// Walk calls fn for s and every descendant suite, parents first.
func (s *Suite) Walk(fn func(*Suite)) {
	fn(s)
	for _, c := range s.suites {
		c.Walk(fn)
	}
}

// Mark records key on s and reports whether it was not set before.
func (s *Suite) Mark(key any) bool {
	if s.marks == nil {
		s.marks = make(map[any]struct{})
	}
	if _, ok := s.marks[key]; ok {
		return false
	}
	s.marks[key] = struct{}{}
	return true
}

// lineage returns the suites from the root down to s.
func (s *Suite) lineage() []*Suite {
	var out []*Suite
	for cur := s; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func join(prefix, title string) string {
	parts := make([]string, 0, 2)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if title != "" {
		parts = append(parts, title)
	}
	return strings.Join(parts, Separator)
}
