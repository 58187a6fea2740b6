package repository

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/persistence"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// Integration tests against a real PostgreSQL. Run with
//   POSTGRES_TEST_DSN=postgres://... go test ./internal/repository -count=1

func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations"))
}

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, migrationsDir(), zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE users, contacts RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func TestUserRepository_Lifecycle(t *testing.T) {
	pool := startPostgres(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Password: "hash", Active: true, Role: domain.RoleSupervisor}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.RoleSupervisor, got.Role)
	assert.True(t, got.Active)

	_, err = repo.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, pgx.ErrNoRows, "username lookup is case sensitive")

	dup := &domain.User{Username: "alice", Password: "x", Active: true, Role: domain.RoleGuest}
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	got.Role = domain.RoleAdministrator
	require.NoError(t, repo.Update(ctx, got))

	require.NoError(t, repo.Deactivate(ctx, user.ID))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, domain.RoleAdministrator, got.Role)

	assert.ErrorIs(t, repo.Deactivate(ctx, 9999), pgx.ErrNoRows)

	active := true
	list, err := repo.List(ctx, UserFilter{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(ctx, UserFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestContactRepository_Lifecycle(t *testing.T) {
	pool := startPostgres(t)
	repo := NewContactRepository(pool)
	ctx := context.Background()

	a := &domain.Contact{Name: "Ana", DDD: "11", Phone: "987654321", Email: "ana@example.com"}
	b := &domain.Contact{Name: "Bruno", DDD: "21", Phone: "87654321", Email: "bruno@example.com"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	ddd := "21"
	list, err := repo.List(ctx, ContactFilter{DDD: &ddd})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bruno", list[0].Name)

	all, err := repo.List(ctx, ContactFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	a.Phone = "912345678"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "912345678", got.Phone)

	missing := &domain.Contact{ID: 9999, Name: "x", DDD: "11", Phone: "12345678", Email: "x@example.com"}
	assert.ErrorIs(t, repo.Update(ctx, missing), pgx.ErrNoRows)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), pgx.ErrNoRows)
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestNormalizePage(t *testing.T) {
	l, o := normalizePage(0, -5)
	assert.Equal(t, defaultPageSize, l)
	assert.Equal(t, 0, o)

	l, _ = normalizePage(10_000, 0)
	assert.Equal(t, maxPageSize, l)

	l, o = normalizePage(10, 20)
	assert.Equal(t, 10, l)
	assert.Equal(t, 20, o)
}
