package postgres

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txStore) Commit() error { return t.tx.Commit(t.ctx) }

func (t *txStore) Rollback() error {
	err := t.tx.Rollback(context.WithoutCancel(t.ctx))
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *txStore) Close() error                   { return nil } // pool stays open
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrTxDone }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrTxDone
}

func (t *txStore) Authz() store.Authz { return &authzRepo{q: t.tx, inTx: true} }
func (t *txStore) Audit() store.Audit { return &auditRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // apply before starting a tx
