package postgres

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var userColumns = []string{"id", "name", "email", "balance", "total_earnings", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &UserRepository{querier: mock, logger: newTestLogger()}

	u := &user.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	query := regexp.QuoteMeta(`INSERT INTO users (id, name, email, balance, total_earnings, created_at, updated_at)`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(u.ID, u.Name, u.Email, u.Balance, u.TotalEarnings, u.CreatedAt, u.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(u.ID, u.Name, u.Email, u.Balance, u.TotalEarnings, u.CreatedAt, u.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, u)
		assert.Equal(t, user.ErrDuplicateEmail{Email: u.Email}, err)
		assert.True(t, errors.Is(err, shared.ErrConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(u.ID, u.Name, u.Email, u.Balance, u.TotalEarnings, u.CreatedAt, u.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, u)
		assert.Contains(t, err.Error(), "failed to create user")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &UserRepository{querier: mock, logger: newTestLogger()}

	id := uuid.New()
	now := time.Now()
	expected := &user.User{ID: id, Name: "Asha", Email: "asha@example.com", Balance: 1000, TotalEarnings: 50, CreatedAt: now, UpdatedAt: now}
	query := `SELECT id, name, email, balance, total_earnings, created_at, updated_at\s+FROM users\s+WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(
			pgxmock.NewRows(userColumns).AddRow(id, expected.Name, expected.Email, expected.Balance, expected.TotalEarnings, now, now))

		u, err := repo.GetByID(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, expected, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		u, err := repo.GetByID(ctx, id)
		assert.Nil(t, u)
		assert.Equal(t, user.ErrUserNotFound{UserID: id}, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &UserRepository{querier: mock, logger: newTestLogger()}

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1\s+FOR UPDATE`).WithArgs(id).WillReturnRows(
		pgxmock.NewRows(userColumns).AddRow(id, "Asha", "asha@example.com", int64(700), int64(0), now, now))

	u, err := repo.LockForUpdate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(700), u.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AdjustBalance(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &UserRepository{querier: mock, logger: newTestLogger()}

	id := uuid.New()
	query := regexp.QuoteMeta(`UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance`)

	t.Run("debit", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(-600), id).WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(400)))

		balance, err := repo.AdjustBalance(ctx, id, -600)
		assert.NoError(t, err)
		assert.Equal(t, int64(400), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(10), id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.AdjustBalance(ctx, id, 10)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bigint overflow", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(math.MaxInt64), id).WillReturnError(&pgconn.PgError{Code: "22003", Message: "bigint out of range"})

		_, err := repo.AdjustBalance(ctx, id, math.MaxInt64)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_AddEarnings(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &UserRepository{querier: mock, logger: newTestLogger()}

	id := uuid.New()
	query := regexp.QuoteMeta(`SET total_earnings = total_earnings + $1`)

	mock.ExpectExec(query).WithArgs(int64(332), id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.AddEarnings(ctx, id, 332))

	mock.ExpectExec(query).WithArgs(int64(332), id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.Equal(t, user.ErrUserNotFound{UserID: id}, repo.AddEarnings(ctx, id, 332))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_WithTx(t *testing.T) {
	repo := &UserRepository{logger: slog.Default()}
	txRepo := repo.WithTx(pgx.Tx(nil))
	assert.IsType(t, &UserRepository{}, txRepo)
}
