// Package storetest is a conformance suite every store driver runs in its
// own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/authgate/internal/auth/domain"
	"github.com/aussiebroadwan/authgate/internal/auth/store"
	"github.com/aussiebroadwan/authgate/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises st. newStore must return an empty, migrated store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("unknown username is not found", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Authz().GetLevel(context.Background(), "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Authz().GetLevelForUpdate(context.Background(), "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("upsert, list and delete", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		require.NoError(t, st.Authz().UpsertLevel(ctx, "bob", domain.LevelEmployee))
		require.NoError(t, st.Authz().UpsertLevel(ctx, "alice", domain.LevelEmployee))
		require.NoError(t, st.Authz().UpsertLevel(ctx, "bob", domain.LevelEmployeePlus))

		level, err := st.Authz().GetLevel(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, domain.LevelEmployeePlus, level)

		grants, err := st.Authz().ListLevels(ctx)
		require.NoError(t, err)
		require.Equal(t, []domain.AuthzGrant{
			{Username: "alice", Level: domain.LevelEmployee},
			{Username: "bob", Level: domain.LevelEmployeePlus},
		}, grants)

		n, err := st.Authz().CountLevels(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, n)

		require.NoError(t, st.Authz().DeleteLevel(ctx, "bob"))
		require.NoError(t, st.Authz().DeleteLevel(ctx, "bob"))
		_, err = st.Authz().GetLevel(ctx, "bob")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("audit rows come back oldest first", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		now := time.Now().UTC().Truncate(time.Second)

		entries := []domain.AuthzAuditEntry{
			{ID: idx.NewAt(now).String(), Username: "carol", Level: domain.LevelEmployee, Active: true, CreatedAt: now},
			{ID: idx.NewAt(now).String(), Username: "dave", Level: domain.LevelEmployee, Active: true, CreatedAt: now},
			{ID: idx.NewAt(now.Add(time.Second)).String(), Username: "carol", Level: domain.LevelEmployee, Active: false, CreatedAt: now.Add(time.Second)},
		}
		for _, e := range entries {
			require.NoError(t, st.Audit().AppendAuthzAudit(ctx, e))
		}

		got, err := st.Audit().ListAuthzAudit(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, got, 2)
		for i, want := range []domain.AuthzAuditEntry{entries[0], entries[2]} {
			require.Equal(t, want.ID, got[i].ID)
			require.Equal(t, want.Username, got[i].Username)
			require.Equal(t, want.Level, got[i].Level)
			require.Equal(t, want.Active, got[i].Active)
			require.WithinDuration(t, want.CreatedAt, got[i].CreatedAt, time.Second)
		}

		none, err := st.Audit().ListAuthzAudit(ctx, "nobody")
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("failed transaction leaves no trace", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)
		boom := errors.New("boom")

		err := st.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Authz().UpsertLevel(ctx, "erin", domain.LevelEmployee))
			require.NoError(t, tx.Audit().AppendAuthzAudit(ctx, domain.AuthzAuditEntry{
				ID: idx.New().String(), Username: "erin", Level: domain.LevelEmployee, Active: true, CreatedAt: time.Now(),
			}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = st.Authz().GetLevel(ctx, "erin")
		require.ErrorIs(t, err, store.ErrNotFound)
		rows, err := st.Audit().ListAuthzAudit(ctx, "erin")
		require.NoError(t, err)
		require.Empty(t, rows)
	})

	t.Run("committed transaction is visible", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Authz().UpsertLevel(ctx, "frank", domain.LevelEmployeePlus)
		}))

		level, err := st.Authz().GetLevel(ctx, "frank")
		require.NoError(t, err)
		require.Equal(t, domain.LevelEmployeePlus, level)
	})

	t.Run("no nested transactions", func(t *testing.T) {
		ctx := context.Background()
		st := newStore(t)

		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.ErrorIs(t, err, store.ErrTxDone)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}
