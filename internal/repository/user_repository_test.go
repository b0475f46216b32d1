package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RealCodeCrafter/trt-backend/internal/domain"
)

var userRowColumns = []string{"id", "username", "password_hash", "email", "role", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, email, role)`)).
		WithArgs("alice", "hash", "alice@example.com", "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	user := &domain.User{Username: "alice", PasswordHash: "hash", Email: "alice@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(11), user.ID)
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepository_CreateUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"})

	err := repo.Create(context.Background(), &domain.User{Username: "alice", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserRepository_CreateDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{Username: "alice", Role: domain.RoleUser})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "insert user: db down")
}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username=$1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(int64(3), "alice", "hash", "", "admin", now, now))

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, int64(3), user.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username=$1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err = repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_FindByRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE role=$1 ORDER BY id LIMIT 1`)).
		WithArgs("superAdmin").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err := repo.FindByRole(context.Background(), domain.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_GetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id=$1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
