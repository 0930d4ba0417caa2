package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

// ItemRepository implements the item.Repository interface for PostgreSQL
type ItemRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewItemRepository(logger *slog.Logger, db *persistence.PostgresDB) item.Repository {
	return &ItemRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *ItemRepository) WithTx(tx pgx.Tx) item.Repository {
	return &ItemRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (id, owner_id, title, daily_price, item_value, deposit_percentage, is_available,
			stats_bookings, stats_total_earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		it.ID,
		it.OwnerID,
		it.Title,
		it.DailyPrice,
		it.ItemValue,
		it.DepositPercentage,
		it.IsAvailable,
		it.Stats.Bookings,
		it.Stats.TotalEarnings,
		it.CreatedAt,
		it.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create item", "owner_id", it.OwnerID.String(), "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `
		SELECT id, owner_id, title, daily_price, item_value, deposit_percentage, is_available,
			stats_bookings, stats_total_earnings, created_at, updated_at
		FROM items
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// LockForUpdate serialises availability checks and flag writes for one item
func (r *ItemRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `
		SELECT id, owner_id, title, daily_price, item_value, deposit_percentage, is_available,
			stats_bookings, stats_total_earnings, created_at, updated_at
		FROM items
		WHERE id = $1
		FOR UPDATE
	`
	return r.getOne(ctx, query, id)
}

func (r *ItemRepository) getOne(ctx context.Context, query string, id uuid.UUID) (*item.Item, error) {
	var it item.Item
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&it.ID,
		&it.OwnerID,
		&it.Title,
		&it.DailyPrice,
		&it.ItemValue,
		&it.DepositPercentage,
		&it.IsAvailable,
		&it.Stats.Bookings,
		&it.Stats.TotalEarnings,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// SetAvailability writes the booking-owned availability flag
func (r *ItemRepository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	query := `
		UPDATE items
		SET is_available = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, available, id)
	if err != nil {
		r.logger.Error("Failed to set item availability", "id", id.String(), "available", available, "error", err)
		return fmt.Errorf("failed to set item availability: %w", err)
	}
	if result.RowsAffected() == 0 {
		return item.ErrItemNotFound{ItemID: id}
	}
	return nil
}

func (r *ItemRepository) RecordCompletedRental(ctx context.Context, id uuid.UUID, earnings int64) error {
	query := `
		UPDATE items
		SET stats_bookings = stats_bookings + 1, stats_total_earnings = stats_total_earnings + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, earnings, id)
	if err != nil {
		r.logger.Error("Failed to record completed rental", "id", id.String(), "error", err)
		return fmt.Errorf("failed to record completed rental: %w", err)
	}
	if result.RowsAffected() == 0 {
		return item.ErrItemNotFound{ItemID: id}
	}
	return nil
}
