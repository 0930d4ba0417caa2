package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/event_relay/projection"
	"github.com/rental-marketplace-core/internal/platform/messaging/producers"
)

// BookingEventHandler handles booking events consumed from Kafka
type BookingEventHandler struct {
	projector projection.Projector
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

func NewBookingEventHandler(
	logger *slog.Logger,
	projector projection.Projector,
	producer producers.DeadLetterPublisher,
) *BookingEventHandler {
	return &BookingEventHandler{
		projector: projector,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage projects one event. Poison messages are parked on the DLQ and committed;
// projection failures are returned so the offset stays uncommitted and the message is redelivered.
func (h *BookingEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.BookingEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("failed to unmarshal booking event: %s", err))
	}
	if event.EventID == uuid.Nil || !event.Type.IsValid() {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("malformed booking event: id=%s type=%q", event.EventID, event.Type))
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Received booking event",
		"event_id", event.EventID.String(),
		"event_type", string(event.Type),
	)

	if err := h.projector.Project(ctx, &event); err != nil {
		logger.Error("Failed to project booking event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("projecting event %s failed: %w", event.EventID, err)
	}
	return nil
}

func (h *BookingEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	h.logger.Error("Unprocessable booking event", "message_key", string(key), "reason", reason)

	if h.producer == nil {
		h.logger.Warn("No DLQ configured, dropping unprocessable message", "message_key", string(key))
		return nil
	}

	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		if errors.Is(err, producers.ErrDLQDisabled) {
			h.logger.Warn("No DLQ configured, dropping unprocessable message", "message_key", string(key))
			return nil
		}
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "message_key", string(key))
		return fmt.Errorf("dead-lettering message %q failed: %w", key, err)
	}

	h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key))
	return nil
}
