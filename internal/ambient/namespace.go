package ambient

import (
	"context"
	"errors"
	"sync"
)

// ErrNoContext is returned when an operation runs outside of any chain.
var ErrNoContext = errors.New("ambient: no active context")

type slotKey struct {
	ns *Namespace
}

type slot struct {
	mu     sync.RWMutex
	values map[string]any
	parent *slot
}

func newSlot(parent *slot) *slot {
	return &slot{values: make(map[string]any), parent: parent}
}

func (s *slot) get(key string) any {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.values[key]
		cur.mu.RUnlock()
		if ok {
			return v
		}
	}
	return nil
}

func (s *slot) set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Namespace is a named family of slots.
type Namespace struct {
	name string
}

// Name returns the name the namespace was created with.
func (n *Namespace) Name() string {
	return n.name
}

func (n *Namespace) slot(ctx context.Context) *slot {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(slotKey{ns: n}).(*slot)
	return s
}

// Fork returns a context carrying a fresh slot. When ctx already belongs to
// a chain of this namespace the new slot inherits its values.
func (n *Namespace) Fork(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, slotKey{ns: n}, newSlot(n.slot(ctx)))
}

// Run executes fn inside a new chain.
func (n *Namespace) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(n.Fork(ctx))
}

// Bind returns a callback that runs fn with the slot active in ctx,
// whatever context the callback is later invoked with.
func (n *Namespace) Bind(ctx context.Context, fn func(ctx context.Context)) func(ctx context.Context) {
	s := n.slot(ctx)
	return func(callCtx context.Context) {
		if callCtx == nil {
			callCtx = context.Background()
		}
		if s != nil {
			callCtx = context.WithValue(callCtx, slotKey{ns: n}, s)
		}
		fn(callCtx)
	}
}

// Active reports whether ctx belongs to a chain of this namespace.
func (n *Namespace) Active(ctx context.Context) bool {
	return n.slot(ctx) != nil
}

// Get returns the value stored under key, searching enclosing slots.
// A missing key yields nil.
func (n *Namespace) Get(ctx context.Context, key string) (any, error) {
	s := n.slot(ctx)
	if s == nil {
		return nil, ErrNoContext
	}
	return s.get(key), nil
}

// Set stores value under key in the innermost slot of ctx.
func (n *Namespace) Set(ctx context.Context, key string, value any) error {
	s := n.slot(ctx)
	if s == nil {
		return ErrNoContext
	}
	s.set(key, value)
	return nil
}
