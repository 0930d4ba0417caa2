package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names a fact recorded by the booking core
type EventType string

const (
	EventBookingCreated      EventType = "booking.created"
	EventBookingApproved     EventType = "booking.approved"
	EventBookingCancelled    EventType = "booking.cancelled"
	EventBookingActivated    EventType = "booking.activated"
	EventBookingCompleted    EventType = "booking.completed"
	EventBookingExtended     EventType = "booking.extended"
	EventBookingMessageAdded EventType = "booking.message_added"
	EventWalletCredited      EventType = "wallet.credited"
	EventWalletDebited       EventType = "wallet.debited"
)

// IsValid reports whether t is one of the known event types
func (t EventType) IsValid() bool {
	switch t {
	case EventBookingCreated, EventBookingApproved, EventBookingCancelled, EventBookingActivated,
		EventBookingCompleted, EventBookingExtended, EventBookingMessageAdded,
		EventWalletCredited, EventWalletDebited:
		return true
	}
	return false
}
