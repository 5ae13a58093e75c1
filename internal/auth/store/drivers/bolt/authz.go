package bolt

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"go.etcd.io/bbolt"
)

var errNoBucket = errors.New("bolt: bucket missing, apply migrations first")

type runner func(writable bool, fn func(*bbolt.Tx) error) error

type grantRecord struct {
	Level int `json:"authz_level"`
}

type authzRepo struct {
	run runner
}

func (r *authzRepo) GetLevel(ctx context.Context, username string) (domain.Level, error) {
	var level domain.Level
	err := r.run(false, func(tx *bbolt.Tx) error {
		b := tx.Bucket(authzBucket)
		if b == nil {
			return errNoBucket
		}
		raw := b.Get([]byte(username))
		if raw == nil {
			return store.ErrNotFound
		}
		var rec grantRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		level = domain.Level(rec.Level)
		return nil
	})
	return level, err
}

// GetLevelForUpdate needs no lock: a write transaction already excludes
// every other writer.
func (r *authzRepo) GetLevelForUpdate(ctx context.Context, username string) (domain.Level, error) {
	return r.GetLevel(ctx, username)
}

func (r *authzRepo) UpsertLevel(ctx context.Context, username string, level domain.Level) error {
	raw, err := json.Marshal(grantRecord{Level: int(level)})
	if err != nil {
		return err
	}
	return r.run(true, func(tx *bbolt.Tx) error {
		b := tx.Bucket(authzBucket)
		if b == nil {
			return errNoBucket
		}
		return b.Put([]byte(username), raw)
	})
}

func (r *authzRepo) DeleteLevel(ctx context.Context, username string) error {
	return r.run(true, func(tx *bbolt.Tx) error {
		b := tx.Bucket(authzBucket)
		if b == nil {
			return errNoBucket
		}
		return b.Delete([]byte(username))
	})
}

func (r *authzRepo) ListLevels(ctx context.Context) ([]domain.AuthzGrant, error) {
	grants := []domain.AuthzGrant{}
	err := r.run(false, func(tx *bbolt.Tx) error {
		b := tx.Bucket(authzBucket)
		if b == nil {
			return errNoBucket
		}
		return b.ForEach(func(k, v []byte) error {
			var rec grantRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			grants = append(grants, domain.AuthzGrant{Username: string(k), Level: domain.Level(rec.Level)})
			return nil
		})
	})
	return grants, err
}

func (r *authzRepo) CountLevels(ctx context.Context) (int, error) {
	var n int
	err := r.run(false, func(tx *bbolt.Tx) error {
		b := tx.Bucket(authzBucket)
		if b == nil {
			return errNoBucket
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Audit rows live in one nested bucket per username, keyed by the ULID id,
// so a cursor walks them oldest first.
type auditRepo struct {
	run runner
}

func (r *auditRepo) AppendAuthzAudit(ctx context.Context, e domain.AuthzAuditEntry) error {
	e.CreatedAt = e.CreatedAt.UTC()
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.run(true, func(tx *bbolt.Tx) error {
		root := tx.Bucket(auditBucket)
		if root == nil {
			return errNoBucket
		}
		b, err := root.CreateBucketIfNotExists([]byte(e.Username))
		if err != nil {
			return err
		}
		return b.Put([]byte(e.ID), raw)
	})
}

func (r *auditRepo) ListAuthzAudit(ctx context.Context, username string) ([]domain.AuthzAuditEntry, error) {
	entries := []domain.AuthzAuditEntry{}
	err := r.run(false, func(tx *bbolt.Tx) error {
		root := tx.Bucket(auditBucket)
		if root == nil {
			return errNoBucket
		}
		b := root.Bucket([]byte(username))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e domain.AuthzAuditEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}
