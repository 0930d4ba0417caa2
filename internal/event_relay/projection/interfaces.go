package projection

import (
	"context"

	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Projector applies one booking event to the activity read model. Projecting the same event twice is a no-op.
type Projector interface {
	Project(ctx context.Context, event *shared.BookingEvent) error
}
