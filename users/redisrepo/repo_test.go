package redisrepo_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/auth-service/users"
	"github.com/shopkit/auth-service/users/redisrepo"
)

func newTestRepo(t *testing.T) *redisrepo.Repo {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisrepo.New(client)
}

func TestUpsertAndLookups(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := &users.User{
		ID:           "user-1",
		Email:        "a@x.com",
		Role:         users.RoleCustomer,
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Upsert(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", byEmail.ID)
	require.Equal(t, users.RoleCustomer, byEmail.Role)
	require.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)
}

func TestGetByEmailNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestUnknownRoleDegradesToCustomer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &users.User{ID: "u1", Email: "a@x.com", Role: users.Role("owner")}))

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, users.RoleCustomer, got.Role)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &users.User{ID: "u1", Email: "a@x.com"}))
	require.NoError(t, repo.Delete(ctx, "a@x.com"))

	_, err := repo.GetByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, users.ErrNotFound)
	_, err = repo.GetByID(ctx, "u1")
	require.ErrorIs(t, err, users.ErrNotFound)

	// Deleting an absent user is not an error.
	require.NoError(t, repo.Delete(ctx, "a@x.com"))
}
