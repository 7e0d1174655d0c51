package sandbox

import (
	"sync"

	"github.com/forgo/txsandbox/internal/database"
)

// Event names a transaction lifecycle observation.
type Event string

const (
	EventTransactionStarted Event = "transaction-started"
	EventCommitted          Event = "committed"
	EventRolledBack         Event = "rolled-back"

	// EventSandboxBreached is emitted when a savepoint is committed outside
	// the manager while commit-on-failure is off. The rollback guarantee no
	// longer holds for the rest of that boundary. The descriptor is that of
	// the boundary running in the committing chain.
	EventSandboxBreached Event = "sandbox-breached"
)

// Handler observes an event for a handle and its descriptor.
type Handler func(tx database.Tx, descriptor string)

type subscription struct {
	id int
	fn Handler
}

// Notifier delivers events to subscribers in subscription order.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Event][]subscription
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[Event][]subscription)}
}

// Subscribe registers fn for ev and returns a function removing it.
func (n *Notifier) Subscribe(ev Event, fn Handler) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs[ev] = append(n.subs[ev], subscription{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			subs := n.subs[ev]
			for i, s := range subs {
				if s.id == id {
					n.subs[ev] = append(subs[:i:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit calls every subscriber of ev synchronously.
func (n *Notifier) Emit(ev Event, tx database.Tx, descriptor string) {
	n.mu.RLock()
	subs := n.subs[ev]
	n.mu.RUnlock()

	for _, s := range subs {
		s.fn(tx, descriptor)
	}
}
