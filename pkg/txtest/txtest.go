package txtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/forgo/txsandbox/internal/ambient"
	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/instrument"
	"github.com/forgo/txsandbox/internal/logging"
	"github.com/forgo/txsandbox/internal/sandbox"
	"github.com/forgo/txsandbox/internal/suite"
)

// ErrMissingDatabase is returned by New when neither Engine nor EngineFunc
// yields an engine.
var ErrMissingDatabase = errors.New("txtest: database engine is required")

// Events re-exported for subscribers.
const (
	EventTransactionStarted = sandbox.EventTransactionStarted
	EventCommitted          = sandbox.EventCommitted
	EventRolledBack         = sandbox.EventRolledBack
	EventSandboxBreached    = sandbox.EventSandboxBreached
)

// Options configures a Harness.
type Options struct {
	// Engine is the database the boundaries are opened on.
	Engine database.Engine
	// EngineFunc supplies the engine on every use when Engine is nil.
	EngineFunc func() database.Engine

	CommitOnFailure     bool
	WrapEachTest        bool
	WrapEachNestedSuite bool
	WrapNestedSuiteBody bool

	OnTransactionStarted sandbox.Handler
	OnCommitted          sandbox.Handler
	OnRolledBack         sandbox.Handler
	OnSandboxBreached    sandbox.Handler

	// Logger discards when nil.
	Logger *slog.Logger
}

// DefaultOptions wraps every test and every nested suite of a tree run on
// engine.
func DefaultOptions(engine database.Engine) Options {
	return Options{
		Engine:              engine,
		WrapEachTest:        true,
		WrapEachNestedSuite: true,
	}
}

// Harness runs suite trees inside sandboxed transactions.
type Harness struct {
	mgr    *sandbox.Manager
	opts   instrument.Options
	logger *slog.Logger
}

// New validates opts and builds a Harness. It fails before any test runs
// when no engine is configured or the engine has no ambient namespace.
func New(opts Options) (*Harness, error) {
	engine := opts.Engine
	if engine == nil && opts.EngineFunc != nil {
		if opts.EngineFunc() == nil {
			return nil, ErrMissingDatabase
		}
		engine = supplied(opts.EngineFunc)
	}
	if engine == nil {
		return nil, ErrMissingDatabase
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mgr, err := sandbox.New(sandbox.Config{
		Engine:          engine,
		CommitOnFailure: opts.CommitOnFailure,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("txtest: %w", err)
	}

	h := &Harness{
		mgr: mgr,
		opts: instrument.Options{
			WrapEachTest:        opts.WrapEachTest,
			WrapEachNestedSuite: opts.WrapEachNestedSuite,
			WrapNestedSuiteBody: opts.WrapNestedSuiteBody,
		},
		logger: logger,
	}
	h.Subscribe(EventTransactionStarted, opts.OnTransactionStarted)
	h.Subscribe(EventCommitted, opts.OnCommitted)
	h.Subscribe(EventRolledBack, opts.OnRolledBack)
	h.Subscribe(EventSandboxBreached, opts.OnSandboxBreached)
	return h, nil
}

// Manager returns the sandbox manager of h.
func (h *Harness) Manager() *sandbox.Manager {
	return h.mgr
}

// Namespace returns the ambient namespace transactions are stored in.
func (h *Harness) Namespace() *ambient.Namespace {
	return h.mgr.Namespace()
}

// Subscribe registers fn for ev. A nil fn is ignored.
func (h *Harness) Subscribe(ev sandbox.Event, fn sandbox.Handler) (unsubscribe func()) {
	return h.mgr.Events().Subscribe(ev, fn)
}

// Instrument registers boundary hooks on the tree under root. Repeated calls
// for the same root do nothing.
func (h *Harness) Instrument(root *suite.Suite) error {
	if err := instrument.Apply(root, h.mgr, h.mgr.Namespace(), h.opts); err != nil {
		return fmt.Errorf("txtest: %w", err)
	}
	h.logger.Debug("suite tree instrumented",
		"wrap_each_test", h.opts.WrapEachTest,
		"wrap_each_nested_suite", h.opts.WrapEachNestedSuite,
		"wrap_nested_suite_body", h.opts.WrapNestedSuiteBody,
	)
	return nil
}

// Execute instruments root and runs it on t inside a fresh ambient chain.
func (h *Harness) Execute(ctx context.Context, t suite.T, root *suite.Suite) error {
	if err := h.Instrument(root); err != nil {
		return err
	}
	suite.Run(h.mgr.Namespace().Fork(ctx), t, root)
	return nil
}

// Run is Execute for go test.
func (h *Harness) Run(t *testing.T, root *suite.Suite) {
	t.Helper()
	if err := h.Execute(t.Context(), suite.Go(t), root); err != nil {
		t.Fatal(err)
	}
}

// Transactional runs fn inside a root boundary of its own chain. The
// boundary is resolved when fn returns, including through t.FailNow.
func (h *Harness) Transactional(t *testing.T, fn func(ctx context.Context, t *testing.T)) {
	t.Helper()

	ctx := h.mgr.Namespace().Fork(t.Context())
	if _, err := h.mgr.Open(ctx, t.Name()); err != nil {
		t.Fatalf("txtest: open transaction: %v", err)
	}
	defer func() {
		if _, err := h.mgr.Stop(ctx, t.Failed(), t.Name()); err != nil {
			t.Errorf("txtest: stop transaction: %v", err)
		}
	}()

	fn(ctx, t)
}

// supplied resolves an engine on every call.
type supplied func() database.Engine

func (s supplied) Begin(ctx context.Context, opts database.TxOptions) (database.Tx, error) {
	engine := s()
	if engine == nil {
		return nil, ErrMissingDatabase
	}
	return engine.Begin(ctx, opts)
}

func (s supplied) Namespace() *ambient.Namespace {
	if engine := s(); engine != nil {
		return engine.Namespace()
	}
	return nil
}
