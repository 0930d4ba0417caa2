package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// BookingService drives the booking lifecycle. Every method commits or rolls back as one unit.
type BookingService interface {
	Create(ctx context.Context, cmd CreateBookingCommand) (*booking.Booking, error)
	Transition(ctx context.Context, cmd TransitionCommand) (*booking.Booking, error)
	Extend(ctx context.Context, cmd ExtendCommand) (*booking.Booking, error)
	AddMessage(ctx context.Context, cmd MessageCommand) (*booking.Message, error)
}

// WalletService handles wallet operations outside a booking
type WalletService interface {
	TopUp(ctx context.Context, cmd TopUpCommand) (*ledger.Transaction, error)
}

// TxRunner runs fn inside one database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Ledger is the only component allowed to change wallet balances
type Ledger interface {
	// LockAccounts row-locks the users in ascending id order and returns them by id
	LockAccounts(ctx context.Context, tx pgx.Tx, userIDs ...uuid.UUID) (map[uuid.UUID]*user.User, error)
	Credit(ctx context.Context, tx pgx.Tx, posting ledger.Posting) (*ledger.Transaction, error)
	Debit(ctx context.Context, tx pgx.Tx, posting ledger.Posting) (*ledger.Transaction, error)
}

// AvailabilityChecker detects reservation overlaps on an item
type AvailabilityChecker interface {
	HasConflict(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, start, end time.Time, excludeBookingID uuid.UUID) (bool, error)
}

// EventRecorder stores a booking event in the outbox of the running transaction
type EventRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, event *shared.BookingEvent) error
}

// RequestValidator rejects malformed commands before any transaction is opened
type RequestValidator interface {
	ValidateCreate(ctx context.Context, cmd CreateBookingCommand) error
	ValidateTransition(ctx context.Context, cmd TransitionCommand) error
	ValidateExtend(ctx context.Context, cmd ExtendCommand) error
	ValidateMessage(ctx context.Context, cmd MessageCommand) error
	ValidateTopUp(ctx context.Context, cmd TopUpCommand) error
}
