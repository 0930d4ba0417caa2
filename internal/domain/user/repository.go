package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Repository defines user and wallet balance persistence
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// LockForUpdate acquires a row lock serialising wallet mutations for the user
	LockForUpdate(ctx context.Context, id uuid.UUID) (*User, error)

	// AdjustBalance atomically adds delta (negative for debits) and returns the new balance
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
	AddEarnings(ctx context.Context, id uuid.UUID, amount int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates missing user
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID.String()
}

// Unwrap lets errors.Is(err, shared.ErrNotFound) match
func (e ErrUserNotFound) Unwrap() error {
	return shared.ErrNotFound
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "user with email already exists: " + e.Email
}

func (e ErrDuplicateEmail) Unwrap() error {
	return shared.ErrConflict
}
