package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/auth/domain"
	"github.com/aussiebroadwan/sessiongate/internal/auth/store"
	"github.com/aussiebroadwan/sessiongate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiongate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestUsersRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u := domain.User{
		ID:             idx.New().String(),
		Email:          "a@x.com",
		PasswordDigest: "ZGlnZXN0",
		CreatedAt:      created,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	byEmail, err := s.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
	require.Equal(t, "ZGlnZXN0", byEmail.PasswordDigest)
	require.True(t, created.Equal(byEmail.CreatedAt))
	require.True(t, created.Equal(byEmail.UpdatedAt))

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, byEmail, byID)
}

func TestUsersErrors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Users().GetUserByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().UpdatePasswordDigest(ctx, "nobody", "x"), store.ErrNotFound)

	u := domain.User{ID: idx.New().String(), Email: "dup@x.com", PasswordDigest: "x"}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	u.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, u), store.ErrAlreadyExists)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u := domain.User{ID: idx.New().String(), Email: "tx@x.com", PasswordDigest: "old"}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	t.Run("commits on success", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Users().UpdatePasswordDigest(ctx, u.ID, "new")
		})
		require.NoError(t, err)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new", got.PasswordDigest)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Users().UpdatePasswordDigest(ctx, u.ID, "discarded"))
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new", got.PasswordDigest)
	})
}
