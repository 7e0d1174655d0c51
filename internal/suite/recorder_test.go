package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_FailurePropagates(t *testing.T) {
	rec := NewRecorder("root")

	ok := rec.Run("child", func(t T) {
		t.Run("grandchild", func(t T) {
			t.Fatalf("failed with %d", 42)
			t.Log("unreachable")
		})
	})

	assert.False(t, ok)
	assert.True(t, rec.Failed())
	children := rec.Children()
	assert.Len(t, children, 1)
	assert.Equal(t, "root/child", children[0].Name())

	grand := children[0].Children()[0]
	assert.Equal(t, "root/child/grandchild", grand.Name())
	assert.Equal(t, []string{"failed with 42"}, grand.Logs())
}

func TestRecorder_Skip(t *testing.T) {
	rec := NewRecorder("root")

	ok := rec.Run("skips", func(t T) {
		t.Skip("not today")
	})

	assert.True(t, ok)
	assert.False(t, rec.Failed())
	assert.True(t, rec.Children()[0].Skipped())
}

func TestRecorder_PanicFails(t *testing.T) {
	rec := NewRecorder("root")

	ok := rec.Run("panics", func(T) {
		panic("kaboom")
	})

	assert.False(t, ok)
	assert.Equal(t, []string{"panic: kaboom"}, rec.Children()[0].Logs())
}

func TestRecorder_Walk(t *testing.T) {
	rec := NewRecorder("root")
	rec.Run("a", func(t T) {
		t.Run("b", func(T) {})
	})
	rec.Run("c", func(T) {})

	var names []string
	rec.Walk(func(r *Recorder) { names = append(names, r.Name()) })
	assert.Equal(t, []string{"root", "root/a", "root/a/b", "root/c"}, names)
}
