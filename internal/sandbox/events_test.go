package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgo/txsandbox/internal/database"
)

func TestNotifier_SubscriptionOrder(t *testing.T) {
	n := NewNotifier()

	var calls []int
	n.Subscribe(EventCommitted, func(database.Tx, string) { calls = append(calls, 1) })
	n.Subscribe(EventCommitted, func(database.Tx, string) { calls = append(calls, 2) })
	n.Subscribe(EventRolledBack, func(database.Tx, string) { calls = append(calls, 99) })

	n.Emit(EventCommitted, nil, "path")
	assert.Equal(t, []int{1, 2}, calls)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier()

	var got []string
	unsubscribe := n.Subscribe(EventRolledBack, func(_ database.Tx, d string) { got = append(got, "a:"+d) })
	n.Subscribe(EventRolledBack, func(_ database.Tx, d string) { got = append(got, "b:"+d) })

	n.Emit(EventRolledBack, nil, "1")
	unsubscribe()
	unsubscribe()
	n.Emit(EventRolledBack, nil, "2")

	assert.Equal(t, []string{"a:1", "b:1", "b:2"}, got)
}

func TestNotifier_NilHandler(t *testing.T) {
	n := NewNotifier()
	n.Subscribe(EventCommitted, nil)()
	assert.NotPanics(t, func() { n.Emit(EventCommitted, nil, "") })
}
