package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Repository defines item persistence
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Item, error)
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// RecordCompletedRental bumps the booking count and adds earnings to the item stats
	RecordCompletedRental(ctx context.Context, id uuid.UUID, earnings int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrItemNotFound indicates missing item
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "item not found: " + e.ItemID.String()
}

func (e ErrItemNotFound) Unwrap() error {
	return shared.ErrNotFound
}
