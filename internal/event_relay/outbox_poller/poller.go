package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/config"
	"github.com/rental-marketplace-core/internal/domain/outbox"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/platform/metrics"
)

// TxRunner runs fn inside a database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Poller relays pending outbox messages to Kafka
type Poller struct {
	db               TxRunner
	outboxRepo       outbox.Repository
	forwarder        EventForwarder
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	db TxRunner,
	outboxRepo outbox.Repository,
	forwarder EventForwarder,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		db:               db,
		outboxRepo:       outboxRepo,
		forwarder:        forwarder,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			if _, err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

// processPendingMessages claims a batch with FOR UPDATE SKIP LOCKED and keeps the rows locked
// until their status is written, so parallel relays never publish the same row twice.
func (p *Poller) processPendingMessages(ctx context.Context) (int, error) {
	var published int
	err := p.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := p.outboxRepo.WithTx(tx)

		messages, err := repo.GetPending(ctx, p.batchSize)
		if err != nil {
			return fmt.Errorf("failed to get pending outbox messages: %w", err)
		}
		if len(messages) == 0 {
			p.logger.Debug("No pending outbox messages found.")
			return nil
		}
		p.logger.Info("Fetched pending outbox messages", "count", len(messages))

		for _, msg := range messages {
			if err := p.forwarder.Forward(ctx, msg); err != nil {
				metrics.RelayPublished("error")
				if err := p.recordFailure(ctx, repo, msg, err); err != nil {
					return err
				}
				continue
			}

			if err := repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusProcessed); err != nil {
				return fmt.Errorf("event %s published but outbox %d not marked processed: %w", msg.EventID, msg.ID, err)
			}
			metrics.RelayPublished("ok")
			published++
		}
		return nil
	})
	return published, err
}

func (p *Poller) recordFailure(ctx context.Context, repo outbox.Repository, msg *outbox.Message, cause error) error {
	logger := p.logger.With("outbox_id", msg.ID, "event_id", msg.EventID.String())

	if errors.Is(cause, ErrUndecodablePayload) {
		logger.Warn("Outbox message can never be published, marking as FAILED_TO_PUBLISH", "error", cause)
		return repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish)
	}

	if err := repo.IncrementAttempts(ctx, msg.ID); err != nil {
		return fmt.Errorf("failed to increment attempts for outbox %d: %w", msg.ID, err)
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		logger.Warn("Max retry attempts reached for outbox message, marking as FAILED_TO_PUBLISH",
			"attempts_made", msg.Attempts+1,
		)
		return repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish)
	}

	logger.Info("Outbox message will be retried", "attempts_made", msg.Attempts+1, "error", cause)
	return nil
}
