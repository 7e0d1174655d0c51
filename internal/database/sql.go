package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/forgo/txsandbox/internal/ambient"
)

// DriverSQLite is the database/sql driver name registered by modernc.org/sqlite.
const DriverSQLite = "sqlite"

// SQL implements Engine on top of database/sql.
type SQL struct {
	db     *sql.DB
	driver string
	ns     *ambient.Namespace
}

// OpenSQL opens a pool for driver and dsn and verifies it with a ping.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	s := NewSQL(db, driver)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL wraps an existing pool.
func NewSQL(db *sql.DB, driver string) *SQL {
	return &SQL{db: db, driver: driver}
}

// UseNamespace binds the engine to ns. Queries issued through Querier join
// the transaction stored in the active chain.
func (s *SQL) UseNamespace(ns *ambient.Namespace) {
	s.ns = ns
}

// Namespace returns the bound namespace, or nil.
func (s *SQL) Namespace() *ambient.Namespace {
	return s.ns
}

// DB returns the underlying pool.
func (s *SQL) DB() *sql.DB {
	return s.db
}

// Driver returns the driver name the engine was created with.
func (s *SQL) Driver() string {
	return s.driver
}

// Close closes the pool.
func (s *SQL) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQL) Ping(ctx context.Context) error {
	if s.db == nil {
		return ErrConnection
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

func (s *SQL) isSQLite() bool {
	return s.driver == DriverSQLite || s.driver == "sqlite3"
}

// Begin opens a root transaction, or a savepoint when opts.Parent is set.
func (s *SQL) Begin(ctx context.Context, opts TxOptions) (Tx, error) {
	if opts.Parent == nil {
		root, err := s.beginRoot(ctx, opts.Isolation)
		if err != nil {
			return nil, err
		}
		return root, nil
	}

	parent, ok := Unwrap(opts.Parent).(*SQLTx)
	if !ok {
		return nil, fmt.Errorf("%w: parent %T is not a SQL transaction", ErrNotSupported, opts.Parent)
	}
	return parent.savepoint(ctx, opts.Parent)
}

func (s *SQL) beginRoot(ctx context.Context, level IsolationLevel) (*SQLTx, error) {
	if s.db == nil {
		return nil, ErrConnection
	}

	// SQLite only knows serializable transactions; dirty reads are a
	// connection pragma instead.
	txOpts := &sql.TxOptions{}
	if !s.isSQLite() {
		txOpts.Isolation = level.sqlLevel()
	}

	tx, err := s.db.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrConnection, err)
	}
	if s.isSQLite() && level == ReadUncommitted {
		if _, err := tx.ExecContext(ctx, "PRAGMA read_uncommitted = true"); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("%w: read_uncommitted: %v", ErrQuery, err)
		}
	}

	root := &SQLTx{id: uuid.NewString(), tx: tx}
	root.root = root
	return root, nil
}

// Querier returns the transaction held by the chain of ctx, or the pool when
// there is none.
func (s *SQL) Querier(ctx context.Context) Querier {
	if tx := s.current(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *SQL) current(ctx context.Context) *SQLTx {
	if s.ns == nil {
		return nil
	}
	v, err := s.ns.Get(ctx, TransactionKey)
	if err != nil {
		return nil
	}
	tx, ok := v.(Tx)
	if !ok || tx == nil || tx.Finished() {
		return nil
	}
	sqlTx, _ := Unwrap(tx).(*SQLTx)
	return sqlTx
}
