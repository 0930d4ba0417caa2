package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rental-marketplace-core/internal/domain/outbox"
	"github.com/rental-marketplace-core/internal/platform/messaging/producers"
)

// ErrUndecodablePayload marks outbox rows that can never be published
var ErrUndecodablePayload = errors.New("outbox payload is not a booking event")

// EventForwarder publishes one outbox message to the booking event topic
type EventForwarder interface {
	Forward(ctx context.Context, message *outbox.Message) error
}

// EventForwarderImpl implements EventForwarder on top of a Kafka publisher
type EventForwarderImpl struct {
	publisher producers.MessagePublisher
	logger    *slog.Logger
}

func NewEventForwarder(publisher producers.MessagePublisher, logger *slog.Logger) EventForwarder {
	return &EventForwarderImpl{
		publisher: publisher,
		logger:    logger,
	}
}

// Forward decodes the stored event and publishes it keyed by its aggregate so every event of a
// booking lands on the same partition in commit order.
func (f *EventForwarderImpl) Forward(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		f.logger.Error("Failed to decode booking event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		return fmt.Errorf("%w: outbox %d: %v", ErrUndecodablePayload, message.ID, err)
	}

	logger := f.logger
	if event.CorrelationID != "" {
		logger = f.logger.With("correlation_id", event.CorrelationID)
	}

	if err := f.publisher.Publish(ctx, message.AggregateID.String(), event); err != nil {
		logger.Error("Failed to publish booking event",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		return fmt.Errorf("failed to publish event %s: %w", message.EventID, err)
	}

	logger.Debug("Booking event published",
		"outbox_id", message.ID,
		"event_id", message.EventID.String(),
		"event_type", string(message.EventType),
	)
	return nil
}
