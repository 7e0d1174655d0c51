package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/forgo/txsandbox/internal/ambient"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrTxDone indicates the transaction or savepoint was already resolved.
	ErrTxDone = errors.New("transaction already finished")

	// ErrNoNamespace indicates the engine has not been bound to an ambient namespace.
	ErrNoNamespace = errors.New("engine has no ambient namespace, bind one with UseNamespace")

	// ErrNotSupported indicates the engine cannot honour the requested option.
	ErrNotSupported = errors.New("not supported by engine")
)

// TransactionKey is the ambient key under which the current transaction lives.
const TransactionKey = "transaction"

// IsolationLevel is the isolation requested for a root transaction.
type IsolationLevel int

const (
	Default IsolationLevel = iota
	ReadUncommitted
	ReadCommitted
	RepeatableRead
	Serializable
)

func (l IsolationLevel) String() string {
	switch l {
	case ReadUncommitted:
		return "read uncommitted"
	case ReadCommitted:
		return "read committed"
	case RepeatableRead:
		return "repeatable read"
	case Serializable:
		return "serializable"
	default:
		return "default"
	}
}

func (l IsolationLevel) sqlLevel() sql.IsolationLevel {
	switch l {
	case ReadUncommitted:
		return sql.LevelReadUncommitted
	case ReadCommitted:
		return sql.LevelReadCommitted
	case RepeatableRead:
		return sql.LevelRepeatableRead
	case Serializable:
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// TxOptions configures Engine.Begin. A nil Parent opens a root transaction.
type TxOptions struct {
	Parent    Tx
	Isolation IsolationLevel
}

// Interceptor decorates a savepoint before it is recorded on its root.
// The returned handle is what Savepoints and Begin hand out.
type Interceptor func(sp Tx) Tx

// Tx is a transaction or savepoint handle.
type Tx interface {
	ID() string
	Finished() bool
	// Parent is nil for a root transaction.
	Parent() Tx
	// Savepoints lists the savepoints opened under this handle in open order.
	Savepoints() []Tx
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// InterceptSavepoints installs fn for savepoints opened under this handle.
	InterceptSavepoints(fn Interceptor)
}

// Engine opens transactions bound to an ambient namespace.
type Engine interface {
	Begin(ctx context.Context, opts TxOptions) (Tx, error)
	Namespace() *ambient.Namespace
}

// Querier is the subset of *sql.DB and *sql.Tx application code needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Unwrap strips decorators implementing Unwrap() Tx.
func Unwrap(tx Tx) Tx {
	for {
		u, ok := tx.(interface{ Unwrap() Tx })
		if !ok {
			return tx
		}
		tx = u.Unwrap()
	}
}

// Root walks parents up to the root transaction.
func Root(tx Tx) Tx {
	for tx != nil && tx.Parent() != nil {
		tx = tx.Parent()
	}
	return tx
}

// Config holds SurrealDB connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
