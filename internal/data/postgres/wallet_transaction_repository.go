package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

// WalletTransactionRepository implements ledger.Repository on the wallet_transactions table
type WalletTransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewWalletTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &WalletTransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *WalletTransactionRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &WalletTransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a transaction to the log. Rows are never updated afterwards.
func (r *WalletTransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (id, user_id, type, amount, description, booking_id, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Type,
		txn.Amount,
		txn.Description,
		txn.BookingID,
		txn.BalanceAfter,
		txn.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet transaction",
			"user_id", txn.UserID.String(),
			"type", string(txn.Type),
			"error", err,
		)
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	return nil
}

// ListByUser returns a page of the user's history, newest first
func (r *WalletTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, description, booking_id, balance_after, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list wallet transactions", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return r.scanAll(rows)
}

// ListByBooking returns every posting made for a booking in posting order
func (r *WalletTransactionRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*ledger.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, description, booking_id, balance_after, created_at
		FROM wallet_transactions
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, bookingID)
	if err != nil {
		r.logger.Error("Failed to list booking transactions", "booking_id", bookingID.String(), "error", err)
		return nil, fmt.Errorf("failed to list booking transactions: %w", err)
	}
	return r.scanAll(rows)
}

// CountByUser counts the user's postings for pagination
func (r *WalletTransactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count wallet transactions", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to count wallet transactions: %w", err)
	}
	return count, nil
}

func (r *WalletTransactionRepository) scanAll(rows pgx.Rows) ([]*ledger.Transaction, error) {
	defer rows.Close()

	transactions := []*ledger.Transaction{}
	for rows.Next() {
		var txn ledger.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.Type,
			&txn.Amount,
			&txn.Description,
			&txn.BookingID,
			&txn.BalanceAfter,
			&txn.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan wallet transaction", "error", err)
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		transactions = append(transactions, &txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over wallet transactions", "error", err)
		return nil, fmt.Errorf("error iterating over wallet transactions: %w", err)
	}

	return transactions, nil
}
