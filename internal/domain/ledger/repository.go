package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages the append-only wallet transaction log with pagination support
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Transaction, error)
	WithTx(tx pgx.Tx) Repository
}
