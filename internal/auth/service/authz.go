package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

var ErrInvalidUsername = errors.New("invalid_username")

// AuthzService maps usernames to authorization levels and keeps an
// append-only audit trail of every change. Unknown usernames are citizens.
type AuthzService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *AuthzService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Get returns the level of username. An unknown username is not an error;
// it yields domain.LevelCitizen.
func (s *AuthzService) Get(ctx context.Context, username string) (domain.Level, error) {
	username = normalizeUsername(username)
	if username == "" {
		return domain.LevelCitizen, nil
	}
	level, err := s.Store.Authz().GetLevel(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.LevelCitizen, nil
	}
	if err != nil {
		return domain.LevelCitizen, fmt.Errorf("get authz level: %w", err)
	}
	return level, nil
}

// Set grants level to username. It reports whether anything changed:
// granting the current level again writes no audit row.
func (s *AuthzService) Set(ctx context.Context, username string, level domain.Level) (bool, error) {
	username = normalizeUsername(username)
	if username == "" {
		return false, ErrInvalidUsername
	}
	if !level.Grantable() {
		return false, fmt.Errorf("%w: %d", domain.ErrInvalidLevel, int(level))
	}

	changed := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Authz().GetLevelForUpdate(ctx, username)
		switch {
		case err == nil && current == level:
			return nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := tx.Authz().UpsertLevel(ctx, username, level); err != nil {
			return err
		}
		changed = true
		return tx.Audit().AppendAuthzAudit(ctx, s.entry(username, level, true))
	})
	if err != nil {
		return false, fmt.Errorf("set authz level: %w", err)
	}

	if changed {
		slogx.FromContext(ctx).Info("authz level granted",
			slog.String("username", username),
			slog.String("level", level.String()),
		)
	}
	return changed, nil
}

// Delete revokes the explicit grant of username. The audit row records the
// level that was revoked. It reports whether a grant existed.
func (s *AuthzService) Delete(ctx context.Context, username string) (bool, error) {
	username = normalizeUsername(username)
	if username == "" {
		return false, ErrInvalidUsername
	}

	var prior domain.Level
	existed := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Authz().GetLevelForUpdate(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Authz().DeleteLevel(ctx, username); err != nil {
			return err
		}
		prior, existed = current, true
		return tx.Audit().AppendAuthzAudit(ctx, s.entry(username, current, false))
	})
	if err != nil {
		return false, fmt.Errorf("delete authz level: %w", err)
	}

	if existed {
		slogx.FromContext(ctx).Info("authz level revoked",
			slog.String("username", username),
			slog.String("level", prior.String()),
		)
	}
	return existed, nil
}

// List returns every explicit grant ordered by username.
func (s *AuthzService) List(ctx context.Context) ([]domain.AuthzGrant, error) {
	return s.Store.Authz().ListLevels(ctx)
}

func (s *AuthzService) Count(ctx context.Context) (int, error) {
	return s.Store.Authz().CountLevels(ctx)
}

// History returns the audit trail of username, oldest first.
func (s *AuthzService) History(ctx context.Context, username string) ([]domain.AuthzAuditEntry, error) {
	return s.Store.Audit().ListAuthzAudit(ctx, normalizeUsername(username))
}

// normalizeUsername is applied by every operation so a grant is found under
// the same key it was written with.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func (s *AuthzService) entry(username string, level domain.Level, active bool) domain.AuthzAuditEntry {
	now := s.now()
	return domain.AuthzAuditEntry{
		ID:        idx.NewAt(now).String(),
		Username:  username,
		Level:     level,
		Active:    active,
		CreatedAt: now,
	}
}
