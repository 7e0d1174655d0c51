package suite

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// T is the part of *testing.T the runner and test bodies use. It satisfies
// the TestingT interfaces of testify's assert and require.
type T interface {
	Name() string
	Helper()
	Log(args ...any)
	Logf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fail()
	FailNow()
	Failed() bool
	Skip(args ...any)
	SkipNow()
	Skipped() bool
	Run(name string, fn func(t T)) bool
}

type goT struct {
	*testing.T
}

// Go adapts t so subtests become testing subtests.
func Go(t *testing.T) T {
	return goT{T: t}
}

func (g goT) Run(name string, fn func(t T)) bool {
	return g.T.Run(name, func(t *testing.T) {
		fn(Go(t))
	})
}

// Recorder is a T that runs outside of go test. Each subtest runs on its own
// goroutine so FailNow and SkipNow can stop it with runtime.Goexit.
type Recorder struct {
	name   string
	parent *Recorder

	mu       sync.Mutex
	failed   bool
	skipped  bool
	logs     []string
	children []*Recorder
}

// NewRecorder creates a top level recorder.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

func (r *Recorder) Name() string { return r.name }
func (r *Recorder) Helper()      {}

func (r *Recorder) Log(args ...any) {
	r.log(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func (r *Recorder) Logf(format string, args ...any) {
	r.log(fmt.Sprintf(format, args...))
}

func (r *Recorder) Error(args ...any) {
	r.Log(args...)
	r.Fail()
}

func (r *Recorder) Errorf(format string, args ...any) {
	r.Logf(format, args...)
	r.Fail()
}

func (r *Recorder) Fatal(args ...any) {
	r.Log(args...)
	r.FailNow()
}

func (r *Recorder) Fatalf(format string, args ...any) {
	r.Logf(format, args...)
	r.FailNow()
}

// Fail marks r and its ancestors as failed.
func (r *Recorder) Fail() {
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		cur.failed = true
		cur.mu.Unlock()
	}
}

func (r *Recorder) FailNow() {
	r.Fail()
	runtime.Goexit()
}

func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *Recorder) Skip(args ...any) {
	r.Log(args...)
	r.SkipNow()
}

func (r *Recorder) SkipNow() {
	r.mu.Lock()
	r.skipped = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *Recorder) Skipped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

// Run runs fn as a subtest on a new goroutine and waits for it. A panic in
// fn fails the subtest.
func (r *Recorder) Run(name string, fn func(t T)) bool {
	child := &Recorder{name: r.name + "/" + name, parent: r}
	r.mu.Lock()
	r.children = append(r.children, child)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				child.Errorf("panic: %v", p)
			}
		}()
		fn(child)
	}()
	<-done

	return !child.Failed()
}

// Logs returns the lines logged directly on r.
func (r *Recorder) Logs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	copy(out, r.logs)
	return out
}

// Children returns the subtests of r in start order.
func (r *Recorder) Children() []*Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Recorder, len(r.children))
	copy(out, r.children)
	return out
}

// Walk calls fn for r and every subtest, parents first.
func (r *Recorder) Walk(fn func(r *Recorder)) {
	fn(r)
	for _, c := range r.Children() {
		c.Walk(fn)
	}
}

func (r *Recorder) log(line string) {
	r.mu.Lock()
	r.logs = append(r.logs, line)
	r.mu.Unlock()
}
