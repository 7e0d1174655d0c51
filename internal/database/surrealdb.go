package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"

	"github.com/forgo/txsandbox/internal/ambient"
)

// Surreal implements Engine for SurrealDB. Transactions are batch based:
// statements accumulate in memory and run inside BEGIN/COMMIT TRANSACTION
// when the root commits.
type Surreal struct {
	db     *surrealdb.DB
	config Config
	ns     *ambient.Namespace
}

// NewSurreal creates a new SurrealDB engine.
func NewSurreal(cfg Config) *Surreal {
	return &Surreal{
		config: cfg,
	}
}

// Connect establishes a connection to SurrealDB
func (s *Surreal) Connect(ctx context.Context) error {
	endpoint := fmt.Sprintf("ws://%s:%s", s.config.Host, s.config.Port)

	db, err := surrealdb.FromEndpointURLString(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	_, err = db.SignIn(ctx, &surrealdb.Auth{
		Username: s.config.User,
		Password: s.config.Password,
	})
	if err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: signin failed: %v", ErrConnection, err)
	}

	if err := db.Use(ctx, s.config.Namespace, s.config.Database); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("%w: use failed: %v", ErrConnection, err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *Surreal) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}

// Ping checks the database connection
func (s *Surreal) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	_, err := s.db.Version(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

func (s *Surreal) UseNamespace(ns *ambient.Namespace) {
	s.ns = ns
}

func (s *Surreal) Namespace() *ambient.Namespace {
	return s.ns
}

// Query executes a query and returns results
func (s *Surreal) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	results, err := surrealdb.Query[interface{}](ctx, s.db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if results == nil {
		return nil, nil
	}

	output := make([]interface{}, 0, len(*results))
	for _, r := range *results {
		if r.Status != "OK" {
			if r.Error != nil {
				return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
			}
			return nil, ErrQuery
		}
		output = append(output, map[string]interface{}{
			"status": r.Status,
			"result": r.Result,
		})
	}

	return output, nil
}

// Execute queues the statement on the chain's transaction when one is
// active, and runs it immediately otherwise.
func (s *Surreal) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	if tx := s.current(ctx); tx != nil {
		return tx.Add(query, vars)
	}
	_, err := s.Query(ctx, query, vars)
	return err
}

// Begin starts a root batch, or a nested batch when opts.Parent is set.
// SurrealDB has no read isolation between queued statements, so the
// requested level is recorded but not enforced.
func (s *Surreal) Begin(ctx context.Context, opts TxOptions) (Tx, error) {
	if opts.Parent == nil {
		root := &SurrealTx{
			id:        uuid.NewString(),
			engine:    s,
			isolation: opts.Isolation,
		}
		root.root = root
		return root, nil
	}

	parent, ok := Unwrap(opts.Parent).(*SurrealTx)
	if !ok {
		return nil, fmt.Errorf("%w: parent %T is not a SurrealDB transaction", ErrNotSupported, opts.Parent)
	}
	return parent.savepoint(opts.Parent)
}

func (s *Surreal) current(ctx context.Context) *SurrealTx {
	if s.ns == nil {
		return nil
	}
	v, err := s.ns.Get(ctx, TransactionKey)
	if err != nil {
		return nil
	}
	tx, ok := v.(Tx)
	if !ok || tx == nil {
		return nil
	}
	root, _ := Unwrap(tx).(*SurrealTx)
	if root == nil {
		return nil
	}
	return root.innermost()
}
