// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoplagas/backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = mockDB.Close()
	})

	return NewRepository(sqlx.NewDb(mockDB, "pgx")), mock
}

var userColumns = []string{"id", "nombre", "correo", "contrasena_hash", "fecha_creacion"}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO usuarios")).
		WithArgs("Ana", "ana@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fecha_creacion"}).AddRow(12, created))

	u := &User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(12), u.ID)
	assert.Equal(t, created, u.CreatedAt)
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO usuarios")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{Name: "Ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepository_GetByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(3, "Ana", "ana@example.com", "hash", created))

	u, err := repo.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestRepository_GetByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE usuarios")).
		WithArgs(int64(3), "Ana María", "ana@example.com", "hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &User{
		ID: 3, Name: "Ana María", Email: "ana@example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)
}

func TestRepository_UpdateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE usuarios")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Update(context.Background(), &User{ID: 3})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepository_UpdatePasswordMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE usuarios SET contrasena_hash")).
		WithArgs(int64(8), "new").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), 8, "new")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plantas")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM usuarios")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 5))
	})

	t.Run("rolls back when missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plantas")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM usuarios")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(context.Background(), 6)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
