package postgres

import (
	"context"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

type authzRepo struct {
	q    querier
	inTx bool
}

func (r *authzRepo) GetLevel(ctx context.Context, username string) (domain.Level, error) {
	var level int
	err := r.q.QueryRow(ctx,
		`SELECT authz_level FROM user_authz WHERE username = $1`, username,
	).Scan(&level)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return domain.Level(level), nil
}

// GetLevelForUpdate takes a transaction scoped advisory lock on the username
// before reading. FOR UPDATE alone locks nothing when the row does not exist
// yet, which would let two first grants both write an audit row.
func (r *authzRepo) GetLevelForUpdate(ctx context.Context, username string) (domain.Level, error) {
	if !r.inTx {
		return r.GetLevel(ctx, username)
	}

	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, username); err != nil {
		return 0, err
	}

	var level int
	err := r.q.QueryRow(ctx,
		`SELECT authz_level FROM user_authz WHERE username = $1 FOR UPDATE`, username,
	).Scan(&level)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return domain.Level(level), nil
}

func (r *authzRepo) UpsertLevel(ctx context.Context, username string, level domain.Level) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_authz (username, authz_level) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET authz_level = EXCLUDED.authz_level`,
		username, int(level))
	return err
}

func (r *authzRepo) DeleteLevel(ctx context.Context, username string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM user_authz WHERE username = $1`, username)
	return err
}

func (r *authzRepo) ListLevels(ctx context.Context) ([]domain.AuthzGrant, error) {
	rows, err := r.q.Query(ctx, `SELECT username, authz_level FROM user_authz ORDER BY username`)
	if err != nil {
		return nil, err
	}

	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuthzGrant, error) {
		var g domain.AuthzGrant
		var level int
		if err := row.Scan(&g.Username, &level); err != nil {
			return g, err
		}
		g.Level = domain.Level(level)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	if grants == nil {
		grants = []domain.AuthzGrant{}
	}
	return grants, nil
}

func (r *authzRepo) CountLevels(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM user_authz`).Scan(&n)
	return n, err
}

type auditRepo struct {
	q querier
}

func (r *auditRepo) AppendAuthzAudit(ctx context.Context, e domain.AuthzAuditEntry) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO user_authz_audit (id, username, authz_level, ts, active)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Username, int(e.Level), e.CreatedAt.UTC(), e.Active)
	return err
}

func (r *auditRepo) ListAuthzAudit(ctx context.Context, username string) ([]domain.AuthzAuditEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, username, authz_level, ts, active
		 FROM user_authz_audit WHERE username = $1 ORDER BY id`, username)
	if err != nil {
		return nil, err
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuthzAuditEntry, error) {
		var e domain.AuthzAuditEntry
		var level int
		if err := row.Scan(&e.ID, &e.Username, &level, &e.CreatedAt, &e.Active); err != nil {
			return e, err
		}
		e.Level = domain.Level(level)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuthzAuditEntry{}
	}
	return entries, nil
}
