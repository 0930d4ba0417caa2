package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/platform/persistence"
)

const bookingColumns = `id, item_id, borrower_id, lender_id, start_date, end_date, status,
		daily_price, total_days, subtotal, deposit_amount, platform_fee, total_amount, lender_earnings,
		deposit_paid, deposit_refunded, final_payment_made, lender_paid, version, created_at, updated_at`

// BookingRepository implements the booking.Repository interface for PostgreSQL
type BookingRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewBookingRepository(logger *slog.Logger, db *persistence.PostgresDB) booking.Repository {
	return &BookingRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *BookingRepository) WithTx(tx pgx.Tx) booking.Repository {
	return &BookingRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores the booking row and its initial timeline
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	p := b.Pricing
	_, err := r.querier.Exec(ctx, query,
		b.ID, b.ItemID, b.BorrowerID, b.LenderID, b.StartDate, b.EndDate, b.Status,
		p.DailyPrice, p.TotalDays, p.Subtotal, p.DepositAmount, p.PlatformFee, p.TotalAmount, p.LenderEarnings,
		b.Payment.DepositPaid, b.Payment.DepositRefunded, b.Payment.FinalPaymentMade, b.Payment.LenderPaid,
		b.Version, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create booking", "id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	for _, entry := range b.Timeline {
		if err := r.AppendTimeline(ctx, b.ID, entry); err != nil {
			return err
		}
	}

	return nil
}

// GetByID loads the booking with timeline and messages
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound{BookingID: id}
		}
		r.logger.Error("Failed to get booking", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if b.Timeline, err = r.timeline(ctx, id); err != nil {
		return nil, err
	}
	if b.Messages, err = r.messages(ctx, id); err != nil {
		return nil, err
	}

	return b, nil
}

// LockForUpdate loads the booking row and holds its lock until the transaction ends
func (r *BookingRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	b, err := scanBooking(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, booking.ErrBookingNotFound{BookingID: id}
		}
		r.logger.Error("Failed to lock booking", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return b, nil
}

// UpdateState writes the mutable booking columns if status and version are still what the caller read
func (r *BookingRepository) UpdateState(ctx context.Context, b *booking.Booking, expected booking.Status) error {
	query := `
		UPDATE bookings
		SET status = $1, end_date = $2,
			total_days = $3, subtotal = $4, total_amount = $5, lender_earnings = $6,
			deposit_paid = $7, deposit_refunded = $8, final_payment_made = $9, lender_paid = $10,
			version = version + 1, updated_at = $11
		WHERE id = $12 AND status = $13 AND version = $14
	`

	p := b.Pricing
	result, err := r.querier.Exec(ctx, query,
		b.Status, b.EndDate,
		p.TotalDays, p.Subtotal, p.TotalAmount, p.LenderEarnings,
		b.Payment.DepositPaid, b.Payment.DepositRefunded, b.Payment.FinalPaymentMade, b.Payment.LenderPaid,
		b.UpdatedAt,
		b.ID, expected, b.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update booking", "id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		r.logger.Warn("Booking compare-and-set lost", "id", b.ID.String(), "expected_status", string(expected), "version", b.Version)
		return booking.ErrConcurrentModification{BookingID: b.ID}
	}

	b.Version++
	return nil
}

func (r *BookingRepository) AppendTimeline(ctx context.Context, bookingID uuid.UUID, entry booking.TimelineEntry) error {
	query := `
		INSERT INTO booking_timeline (booking_id, status, note, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.querier.Exec(ctx, query, bookingID, entry.Status, entry.Note, entry.CreatedAt); err != nil {
		r.logger.Error("Failed to append timeline entry", "booking_id", bookingID.String(), "error", err)
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}
	return nil
}

func (r *BookingRepository) AppendMessage(ctx context.Context, bookingID uuid.UUID, msg booking.Message) error {
	query := `
		INSERT INTO booking_messages (booking_id, sender_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.querier.Exec(ctx, query, bookingID, msg.SenderID, msg.Text, msg.CreatedAt); err != nil {
		r.logger.Error("Failed to append booking message", "booking_id", bookingID.String(), "error", err)
		return fmt.Errorf("failed to append booking message: %w", err)
	}
	return nil
}

// HasReservationOverlap uses inclusive bounds, so bookings touching [start, end] conflict
func (r *BookingRepository) HasReservationOverlap(ctx context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE item_id = $1
			  AND status IN ('approved', 'active')
			  AND start_date <= $3
			  AND end_date >= $2
			  AND id <> $4
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, itemID, start, end, exclude).Scan(&exists); err != nil {
		r.logger.Error("Failed to check booking overlap", "item_id", itemID.String(), "error", err)
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return exists, nil
}

// LockPendingOverlapping locks competing pending requests in id order
func (r *BookingRepository) LockPendingOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE item_id = $1
		  AND status = 'pending'
		  AND start_date <= $3
		  AND end_date >= $2
		  AND id <> $4
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, itemID, start, end, exclude)
	if err != nil {
		r.logger.Error("Failed to lock pending bookings", "item_id", itemID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock pending bookings: %w", err)
	}
	return r.collect(rows)
}

// List returns one side of a user's bookings, newest first
func (r *BookingRepository) List(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	column := "borrower_id"
	if filter.Role == booking.RoleLender {
		column = "lender_id"
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + column + ` = $1`
	args := []interface{}{filter.UserID}
	if filter.Status != "" {
		query += ` AND status = $2`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bookings", "user_id", filter.UserID.String(), "role", string(filter.Role), "error", err)
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return r.collect(rows)
}

func (r *BookingRepository) collect(rows pgx.Rows) ([]*booking.Booking, error) {
	defer rows.Close()

	bookings := []*booking.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			r.logger.Error("Failed to scan booking", "error", err)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over bookings", "error", err)
		return nil, fmt.Errorf("error iterating over bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) timeline(ctx context.Context, bookingID uuid.UUID) ([]booking.TimelineEntry, error) {
	query := `
		SELECT status, note, created_at
		FROM booking_timeline
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query, bookingID)
	if err != nil {
		r.logger.Error("Failed to load booking timeline", "booking_id", bookingID.String(), "error", err)
		return nil, fmt.Errorf("failed to load booking timeline: %w", err)
	}
	defer rows.Close()

	entries := []booking.TimelineEntry{}
	for rows.Next() {
		var e booking.TimelineEntry
		if err := rows.Scan(&e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *BookingRepository) messages(ctx context.Context, bookingID uuid.UUID) ([]booking.Message, error) {
	query := `
		SELECT sender_id, text, created_at
		FROM booking_messages
		WHERE booking_id = $1
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query, bookingID)
	if err != nil {
		r.logger.Error("Failed to load booking messages", "booking_id", bookingID.String(), "error", err)
		return nil, fmt.Errorf("failed to load booking messages: %w", err)
	}
	defer rows.Close()

	msgs := []booking.Message{}
	for rows.Next() {
		var m booking.Message
		if err := rows.Scan(&m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	p := &b.Pricing
	err := row.Scan(
		&b.ID, &b.ItemID, &b.BorrowerID, &b.LenderID, &b.StartDate, &b.EndDate, &b.Status,
		&p.DailyPrice, &p.TotalDays, &p.Subtotal, &p.DepositAmount, &p.PlatformFee, &p.TotalAmount, &p.LenderEarnings,
		&b.Payment.DepositPaid, &b.Payment.DepositRefunded, &b.Payment.FinalPaymentMade, &b.Payment.LenderPaid,
		&b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
