package sqlite

import (
	"context"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/store/drivers/sqlite/gen"
)

type authzRepo struct {
	q *gen.Queries
}

func (r *authzRepo) GetLevel(ctx context.Context, username string) (domain.Level, error) {
	level, err := r.q.GetAuthzLevel(ctx, username)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return domain.Level(level), nil
}

// GetLevelForUpdate has no row lock in sqlite; the immediate transaction
// already holds the database write lock.
func (r *authzRepo) GetLevelForUpdate(ctx context.Context, username string) (domain.Level, error) {
	return r.GetLevel(ctx, username)
}

func (r *authzRepo) UpsertLevel(ctx context.Context, username string, level domain.Level) error {
	return r.q.UpsertAuthzLevel(ctx, gen.UpsertAuthzLevelParams{
		Username:   username,
		AuthzLevel: int64(level),
	})
}

func (r *authzRepo) DeleteLevel(ctx context.Context, username string) error {
	return r.q.DeleteAuthzLevel(ctx, username)
}

func (r *authzRepo) ListLevels(ctx context.Context) ([]domain.AuthzGrant, error) {
	rows, err := r.q.ListAuthzLevels(ctx)
	if err != nil {
		return nil, err
	}

	grants := make([]domain.AuthzGrant, len(rows))
	for i, row := range rows {
		grants[i] = domain.AuthzGrant{Username: row.Username, Level: domain.Level(row.AuthzLevel)}
	}
	return grants, nil
}

func (r *authzRepo) CountLevels(ctx context.Context) (int, error) {
	n, err := r.q.CountAuthzLevels(ctx)
	return int(n), err
}

type auditRepo struct {
	q *gen.Queries
}

func (r *auditRepo) AppendAuthzAudit(ctx context.Context, e domain.AuthzAuditEntry) error {
	return r.q.InsertAuthzAudit(ctx, gen.InsertAuthzAuditParams{
		ID:         e.ID,
		Username:   e.Username,
		AuthzLevel: int64(e.Level),
		Ts:         e.CreatedAt.UTC(),
		Active:     e.Active,
	})
}

func (r *auditRepo) ListAuthzAudit(ctx context.Context, username string) ([]domain.AuthzAuditEntry, error) {
	rows, err := r.q.ListAuthzAudit(ctx, username)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.AuthzAuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.AuthzAuditEntry{
			ID:        row.ID,
			Username:  row.Username,
			Level:     domain.Level(row.AuthzLevel),
			Active:    row.Active,
			CreatedAt: row.Ts,
		}
	}
	return entries, nil
}
