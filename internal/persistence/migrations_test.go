package persistence

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationFS_ContainsOrderedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, migrationsDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00001_users.sql", "00002_catalog.sql"}, names)

	users, err := fs.ReadFile(migrationFS, migrationsDir+"/00001_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(users), "users_username_key")
	assert.Contains(t, string(users), "users_single_super_admin")
}

func TestRunMigrations_NilDB(t *testing.T) {
	err := RunMigrations(context.Background(), nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	assert.Equal(t, migrationsDir, gotDir)

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
	err = RunMigrations(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migrations")
}
