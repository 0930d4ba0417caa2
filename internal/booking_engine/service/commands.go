package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/booking"
)

// CreateBookingCommand requests a booking of an item by the borrower
type CreateBookingCommand struct {
	ItemID     uuid.UUID
	BorrowerID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}

// TransitionCommand moves a booking to TargetStatus on behalf of ActorID
type TransitionCommand struct {
	BookingID    uuid.UUID
	ActorID      uuid.UUID
	TargetStatus booking.Status
	Note         string
}

type ExtendCommand struct {
	BookingID  uuid.UUID
	ActorID    uuid.UUID
	NewEndDate time.Time
}

type MessageCommand struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Text      string
}

// TopUpCommand adds funds to a wallet; only the owner may top up
type TopUpCommand struct {
	UserID  uuid.UUID
	ActorID uuid.UUID
	Amount  int64
}
