package projection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rental-marketplace-core/internal/domain/activity"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/platform/metrics"
)

type ActivityProjector struct {
	repo   activity.Repository
	logger *slog.Logger
}

func NewActivityProjector(repo activity.Repository, logger *slog.Logger) *ActivityProjector {
	return &ActivityProjector{
		repo:   repo,
		logger: logger,
	}
}

// Project stores the event as an activity entry. Redelivered events hit the unique event_id index and are skipped.
func (p *ActivityProjector) Project(ctx context.Context, event *shared.BookingEvent) error {
	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	entry := activity.FromEvent(event)
	if err := p.repo.Insert(ctx, entry); err != nil {
		if errors.Is(err, activity.ErrDuplicateEntry{}) {
			metrics.RelayProjected("duplicate")
			logger.Info("Booking event already projected", "event_id", entry.EventID)
			return nil
		}
		metrics.RelayProjected("error")
		logger.Error("Failed to project booking event", "event_id", entry.EventID, "error", err)
		return fmt.Errorf("failed to project event %s: %w", entry.EventID, err)
	}

	metrics.RelayProjected("ok")
	logger.Debug("Booking event projected",
		"event_id", entry.EventID,
		"event_type", string(entry.EventType),
		"participants", len(entry.Participants),
	)
	return nil
}
