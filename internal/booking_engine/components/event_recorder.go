package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/outbox"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// EventRecorderImpl writes booking events to the outbox in the same transaction as the change
type EventRecorderImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewEventRecorder(outboxRepo outbox.Repository, logger *slog.Logger) service.EventRecorder {
	return &EventRecorderImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Record fills in the event id, timestamp and correlation id when the caller left them empty
func (r *EventRecorderImpl) Record(ctx context.Context, tx pgx.Tx, event *shared.BookingEvent) error {
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = shared.CorrelationIDFromContext(ctx)
	}

	logger := r.logger
	if event.CorrelationID != "" {
		logger = r.logger.With("correlation_id", event.CorrelationID)
	}

	if !event.Type.IsValid() {
		return fmt.Errorf("unknown event type %q", event.Type)
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for event %s: %w", event.EventID, err)
	}

	if err := r.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		logger.Error("Failed to create outbox message",
			"event_id", event.EventID.String(),
			"event_type", string(event.Type),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for event %s: %w", event.EventID, err)
	}

	logger.Debug("Outbox message created",
		"event_id", event.EventID.String(),
		"event_type", string(event.Type),
		"outbox_id", message.ID,
	)
	return nil
}
