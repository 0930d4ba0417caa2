package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/activity"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// UserService defines member and wallet read operations
type UserService interface {
	// CreateUser registers a member with an empty wallet
	// Returns a Conflict error if the email is already registered
	CreateUser(ctx context.Context, name, email string) (*user.User, error)

	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)

	// ListTransactions returns one page of wallet history, newest first, and the total count
	ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Transaction, int64, error)
}

// ItemService defines listing operations
type ItemService interface {
	CreateItem(ctx context.Context, cmd CreateItemCommand) (*item.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error)
}

// BookingQueryService reads bookings on behalf of a participant
type BookingQueryService interface {
	// GetBooking returns the booking with its timeline and messages
	// Returns a Forbidden error if actorID is neither borrower nor lender
	GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*booking.Booking, error)

	ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error)
}

// ActivityService reads the projected activity feed
type ActivityService interface {
	UserActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*activity.Entry, int64, error)
	BookingActivity(ctx context.Context, bookingID, actorID uuid.UUID, page, perPage int) ([]*activity.Entry, error)
}

// CreateItemCommand carries a new listing; the owner is the calling user
type CreateItemCommand struct {
	OwnerID           uuid.UUID
	Title             string
	DailyPrice        int64
	ItemValue         int64
	DepositPercentage int
}
