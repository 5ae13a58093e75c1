// Package bolt stores authorization grants in a single bbolt file. bbolt
// allows one writer at a time, so every read-compare-write is serialized
// without row locks.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"go.etcd.io/bbolt"
)

const (
	dirPerm     = fs.FileMode(0o700)
	filePerm    = fs.FileMode(0o600)
	openTimeout = 5 * time.Second

	schemaVersion = 1
)

var (
	metaBucket  = []byte("meta")
	authzBucket = []byte("user_authz")
	auditBucket = []byte("user_authz_audit")

	schemaKey = []byte("schema_version")
)

type Store struct {
	db *bbolt.DB
}

// NewStore opens the database at path, creating it and its directory if
// needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, filePerm, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database file is still open.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.View(func(*bbolt.Tx) error { return nil })
}

// ApplyMigrations creates the buckets and records the schema version.
func (s *Store) ApplyMigrations() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if v := meta.Get(schemaKey); v != nil && len(v) == 1 && int(v[0]) > schemaVersion {
			return fmt.Errorf("bolt: schema version %d is newer than %d", v[0], schemaVersion)
		}
		if _, err := tx.CreateBucketIfNotExists(authzBucket); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(auditBucket); err != nil {
			return err
		}
		return meta.Put(schemaKey, []byte{schemaVersion})
	})
}

// Tx starts a write transaction. bbolt blocks every other writer until it
// ends.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Authz() store.Authz { return &authzRepo{run: s.run} }
func (s *Store) Audit() store.Audit { return &auditRepo{run: s.run} }

func (s *Store) run(writable bool, fn func(*bbolt.Tx) error) error {
	if writable {
		return s.db.Update(fn)
	}
	return s.db.View(fn)
}

type txStore struct {
	tx *bbolt.Tx
}

func (t *txStore) Commit() error { return t.tx.Commit() }

func (t *txStore) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, bbolt.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *txStore) Close() error                   { return nil } // db stays open
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrTxDone }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrTxDone
}

func (t *txStore) Authz() store.Authz { return &authzRepo{run: t.run} }
func (t *txStore) Audit() store.Audit { return &auditRepo{run: t.run} }

func (t *txStore) ApplyMigrations() error { return nil } // apply before starting a tx

func (t *txStore) run(_ bool, fn func(*bbolt.Tx) error) error { return fn(t.tx) }
