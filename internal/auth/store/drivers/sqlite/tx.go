package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  gen.New(tx),
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil } // outer DB stays open
func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported; could emulate with SAVEPOINT if needed.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrTxDone }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrTxDone
}

func (t *txStore) Authz() store.Authz { return &authzRepo{q: t.q} }
func (t *txStore) Audit() store.Audit { return &auditRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // apply before starting a tx
