package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/config"
)

func TestNewPostgres_MissingDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig(config.PostgresConfig{
		DSN:            "postgres://user:pw@localhost:5432/contacts",
		MaxConns:       8,
		MinConns:       2,
		ConnMaxIdleSec: 30,
		ConnMaxLifeSec: 300,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, cfg.MaxConns)
	assert.EqualValues(t, 2, cfg.MinConns)
	assert.Equal(t, 30*time.Second, cfg.MaxConnIdleTime)
	assert.Equal(t, 5*time.Minute, cfg.MaxConnLifetime)

	_, err = poolConfig(config.PostgresConfig{DSN: "://bad"})
	assert.Error(t, err)
}

func TestNilHandles(t *testing.T) {
	var pg *Postgres
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(context.Background()))
	pg.Close()

	var r *Redis
	assert.False(t, r.Enabled())
	assert.NoError(t, r.Ping(context.Background()))
	r.Close()
}

func TestRunMigrations_NilPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-matter", zap.NewNop()))
}

func TestMigrationScripts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_contacts.sql", "0001_users.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_nested.sql"), 0o700))

	scripts, err := migrationScripts(dir)
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "0001_users.sql", filepath.Base(scripts[0]))
	assert.Equal(t, "0002_contacts.sql", filepath.Base(scripts[1]))

	_, err = migrationScripts(filepath.Join(dir, "missing"))
	assert.Error(t, err)
	_, err = migrationScripts(filepath.Join(dir, "README.md"))
	assert.Error(t, err)
}
