// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be bound to a pgx transaction with WithTx so a booking operation
// commits its booking, wallet and outbox writes together.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

const (
	uniqueViolation        = "23505"
	numericValueOutOfRange = "22003"
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every statement on tx
func (r *UserRepository) WithTx(tx pgx.Tx) user.Repository {
	return &UserRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new user. A duplicate email yields user.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, email, balance, total_earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.Balance,
		u.TotalEarnings,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateEmail{Email: u.Email}
		}
		r.logger.Error("Failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `
		SELECT id, name, email, balance, total_earnings, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id, "get")
}

// LockForUpdate retrieves a user and holds its row lock until the transaction ends.
// Must run inside a transaction (WithTx).
func (r *UserRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `
		SELECT id, name, email, balance, total_earnings, created_at, updated_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, id, "lock")
}

func (r *UserRepository) getOne(ctx context.Context, query string, id uuid.UUID, op string) (*user.User, error) {
	var u user.User
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Balance,
		&u.TotalEarnings,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to "+op+" user", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to %s user: %w", op, err)
	}

	return &u, nil
}

// AdjustBalance adds delta to the balance in a single statement and returns the result
func (r *UserRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance int64
	err := r.querier.QueryRow(ctx, query, delta, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, user.ErrUserNotFound{UserID: id}
		}
		if isOutOfRange(err) {
			return 0, shared.ValidationErrorf("balance out of range")
		}
		r.logger.Error("Failed to adjust balance", "id", id.String(), "delta", delta, "error", err)
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return balance, nil
}

// AddEarnings increments the lender's lifetime earnings
func (r *UserRepository) AddEarnings(ctx context.Context, id uuid.UUID, amount int64) error {
	query := `
		UPDATE users
		SET total_earnings = total_earnings + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, amount, id)
	if err != nil {
		r.logger.Error("Failed to add earnings", "id", id.String(), "error", err)
		return fmt.Errorf("failed to add earnings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound{UserID: id}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericValueOutOfRange
}
