package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/booking"
)

// AvailabilityCheckerImpl only looks at approved and active bookings; pending requests never block
type AvailabilityCheckerImpl struct {
	bookingRepo booking.Repository
	logger      *slog.Logger
}

func NewAvailabilityChecker(bookingRepo booking.Repository, logger *slog.Logger) service.AvailabilityChecker {
	return &AvailabilityCheckerImpl{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// HasConflict treats both ranges as inclusive, so a booking ending on the day another starts conflicts
func (c *AvailabilityCheckerImpl) HasConflict(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, start, end time.Time, excludeBookingID uuid.UUID) (bool, error) {
	conflict, err := c.bookingRepo.WithTx(tx).HasReservationOverlap(ctx, itemID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	if conflict {
		c.logger.Debug("Reservation overlap found",
			"item_id", itemID.String(),
			"start", start.Format(time.DateOnly),
			"end", end.Format(time.DateOnly),
		)
	}
	return conflict, nil
}
