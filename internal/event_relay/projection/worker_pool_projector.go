package projection

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// WorkerPoolProjector bounds concurrent projections with an ants pool
type WorkerPoolProjector struct {
	base   Projector
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProjector(base Projector, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolProjector, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProjector{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// Project submits the event to the pool and waits for the result so the caller commits only after the write.
func (s *WorkerPoolProjector) Project(ctx context.Context, event *shared.BookingEvent) error {
	resultChan := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.base.Project(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit event to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProjector) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolProjector) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolProjector) Capacity() int {
	return s.pool.Cap()
}
