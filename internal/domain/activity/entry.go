// Package activity is the read model fed by booking events: a per-booking and per-user feed.
// It is never consulted by the booking core.
package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Entry is one projected booking event. Identifiers are stored as strings.
type Entry struct {
	EventID       string           `json:"event_id" bson:"event_id"`
	EventType     shared.EventType `json:"event_type" bson:"event_type"`
	BookingID     string           `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	ItemID        string           `json:"item_id,omitempty" bson:"item_id,omitempty"`
	Participants  []string         `json:"participants" bson:"participants"`
	ActorID       string           `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Status        string           `json:"status,omitempty" bson:"status,omitempty"`
	Amount        int64            `json:"amount,omitempty" bson:"amount,omitempty"`
	Note          string           `json:"note,omitempty" bson:"note,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at" bson:"occurred_at"`
	ProjectedAt   time.Time        `json:"projected_at" bson:"projected_at"`
}

// FromEvent projects a booking event. Wallet events list their owner as the only participant.
func FromEvent(event *shared.BookingEvent) *Entry {
	participants := make([]string, 0, len(event.Participants)+1)
	seen := make(map[uuid.UUID]bool)
	add := func(id uuid.UUID) {
		if id == uuid.Nil || seen[id] {
			return
		}
		seen[id] = true
		participants = append(participants, id.String())
	}
	for _, id := range event.Participants {
		add(id)
	}
	add(event.UserID)

	return &Entry{
		EventID:       event.EventID.String(),
		EventType:     event.Type,
		BookingID:     idString(event.BookingID),
		ItemID:        idString(event.ItemID),
		Participants:  participants,
		ActorID:       idString(event.ActorID),
		Status:        event.Status,
		Amount:        event.Amount,
		Note:          event.Note,
		CorrelationID: event.CorrelationID,
		OccurredAt:    event.OccurredAt,
		ProjectedAt:   time.Now().UTC(),
	}
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
