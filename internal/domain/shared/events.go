package shared

import (
	"time"

	"github.com/google/uuid"
)

// BookingEvent is the payload written to the outbox and published on the booking event topic
type BookingEvent struct {
	EventID       uuid.UUID   `json:"event_id"`
	Type          EventType   `json:"event_type"`
	BookingID     uuid.UUID   `json:"booking_id"`
	ItemID        uuid.UUID   `json:"item_id"`
	UserID        uuid.UUID   `json:"user_id"` // wallet owner for wallet.* events
	ActorID       uuid.UUID   `json:"actor_id"`
	Participants  []uuid.UUID `json:"participants,omitempty"`
	Status        string      `json:"status,omitempty"`
	Amount        int64       `json:"amount,omitempty"` // minor units
	Note          string      `json:"note,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// AggregateID is the partitioning key: the booking for booking events, the wallet owner otherwise
func (e *BookingEvent) AggregateID() uuid.UUID {
	if e.BookingID != uuid.Nil {
		return e.BookingID
	}
	return e.UserID
}
