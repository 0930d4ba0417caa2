package activity

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores projected activity with pagination support
type Repository interface {
	// Insert stores entry; a second insert of the same event id returns ErrDuplicateEntry
	Insert(ctx context.Context, entry *Entry) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID, limit, offset int) ([]*Entry, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByParticipant(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ErrDuplicateEntry indicates the event was already projected
type ErrDuplicateEntry struct {
	EventID string
}

func (e ErrDuplicateEntry) Error() string {
	return "activity entry already projected: " + e.EventID
}

// Is implements the errors.Is interface; an empty EventID matches any duplicate
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	return t.EventID == "" || t.EventID == e.EventID
}
