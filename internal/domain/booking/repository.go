package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// ListFilter narrows a user's booking list
type ListFilter struct {
	UserID uuid.UUID
	Role   Role
	Status Status // empty for any
	Limit  int
	Offset int
}

// Repository defines booking persistence. Bookings are never deleted.
type Repository interface {
	Create(ctx context.Context, booking *Booking) error

	// GetByID loads the booking with its timeline and messages
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// LockForUpdate loads the booking row under a row lock; timeline and messages are not loaded
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// UpdateState persists status, dates, pricing and payment flags with a compare-and-set on
	// (status, version) and bumps the version on success.
	UpdateState(ctx context.Context, booking *Booking, expected Status) error

	AppendTimeline(ctx context.Context, bookingID uuid.UUID, entry TimelineEntry) error
	AppendMessage(ctx context.Context, bookingID uuid.UUID, msg Message) error

	// HasReservationOverlap reports approved or active bookings on the item overlapping [start, end]
	HasReservationOverlap(ctx context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error)

	// LockPendingOverlapping locks pending bookings on the item overlapping [start, end]
	LockPendingOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*Booking, error)

	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrBookingNotFound indicates missing booking
type ErrBookingNotFound struct {
	BookingID uuid.UUID
}

func (e ErrBookingNotFound) Error() string {
	return "booking not found: " + e.BookingID.String()
}

func (e ErrBookingNotFound) Unwrap() error {
	return shared.ErrNotFound
}

// ErrConcurrentModification indicates the compare-and-set lost against another writer
type ErrConcurrentModification struct {
	BookingID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for booking: " + e.BookingID.String()
}

func (e ErrConcurrentModification) Unwrap() error {
	return shared.ErrConflict
}
