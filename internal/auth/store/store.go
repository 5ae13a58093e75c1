package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrTxDone   = errors.New("store: nested or finished transaction")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres, bolt) implement this. Sub-repositories are methods so a Tx can
// hand out the same repos bound to the transaction, and nobody opens a
// transaction inside a transaction by accident.
type Store interface {
	Authz() Authz
	Audit() Audit

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying pool or file handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Authz interface {
	// GetLevel returns the explicit level of username, or ErrNotFound.
	GetLevel(ctx context.Context, username string) (domain.Level, error)

	// GetLevelForUpdate is GetLevel that also locks the row until the
	// surrounding transaction ends, where the backend supports row locks.
	GetLevelForUpdate(ctx context.Context, username string) (domain.Level, error)

	// UpsertLevel inserts or replaces the level of username.
	UpsertLevel(ctx context.Context, username string, level domain.Level) error

	// DeleteLevel removes the record of username. Missing records are not an error.
	DeleteLevel(ctx context.Context, username string) error

	// ListLevels returns every explicit grant ordered by username.
	ListLevels(ctx context.Context) ([]domain.AuthzGrant, error)

	CountLevels(ctx context.Context) (int, error)
}

type Audit interface {
	// AppendAuthzAudit writes one audit row. Rows are never updated or deleted.
	AppendAuthzAudit(ctx context.Context, entry domain.AuthzAuditEntry) error

	// ListAuthzAudit returns the audit rows of username, oldest first.
	ListAuthzAudit(ctx context.Context, username string) ([]domain.AuthzAuditEntry, error)
}
