package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingColumnNames = []string{"id", "item_id", "borrower_id", "lender_id", "start_date", "end_date", "status",
	"daily_price", "total_days", "subtotal", "deposit_amount", "platform_fee", "total_amount", "lender_earnings",
	"deposit_paid", "deposit_refunded", "final_payment_made", "lender_paid", "version", "created_at", "updated_at"}

func sampleBooking(t *testing.T) *booking.Booking {
	t.Helper()
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	snap := pricing.Snapshot{DailyPrice: 100, TotalDays: 5, Subtotal: 500, DepositAmount: 2000, PlatformFee: 25, TotalAmount: 2525, LenderEarnings: 475}
	b, err := booking.New(uuid.New(), uuid.New(), uuid.New(), start, start.AddDate(0, 0, 5), snap)
	require.NoError(t, err)
	return b
}

func bookingRow(rows *pgxmock.Rows, b *booking.Booking) *pgxmock.Rows {
	p := b.Pricing
	return rows.AddRow(b.ID, b.ItemID, b.BorrowerID, b.LenderID, b.StartDate, b.EndDate, b.Status,
		p.DailyPrice, p.TotalDays, p.Subtotal, p.DepositAmount, p.PlatformFee, p.TotalAmount, p.LenderEarnings,
		b.Payment.DepositPaid, b.Payment.DepositRefunded, b.Payment.FinalPaymentMade, b.Payment.LenderPaid,
		b.Version, b.CreatedAt, b.UpdatedAt)
}

func TestBookingRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}
	b := sampleBooking(t)

	t.Run("writes row and opening timeline", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings (`)).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_timeline (booking_id, status, note, created_at)`)).
			WithArgs(b.ID, booking.StatusPending, booking.NoteCreated, b.Timeline[0].CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings (`)).WillReturnError(errors.New("check violation"))

		err := repo.Create(ctx, b)
		assert.Contains(t, err.Error(), "failed to create booking")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}
	b := sampleBooking(t)

	t.Run("with timeline and messages", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).WithArgs(b.ID).WillReturnRows(bookingRow(pgxmock.NewRows(bookingColumnNames), b))
		mock.ExpectQuery(`FROM booking_timeline`).WithArgs(b.ID).WillReturnRows(pgxmock.NewRows([]string{"status", "note", "created_at"}).
			AddRow(booking.StatusPending, booking.NoteCreated, now).
			AddRow(booking.StatusApproved, "Booking approved", now))
		mock.ExpectQuery(`FROM booking_messages`).WithArgs(b.ID).WillReturnRows(pgxmock.NewRows([]string{"sender_id", "text", "created_at"}).
			AddRow(b.BorrowerID, "hello", now))

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.Pricing, got.Pricing)
		assert.Len(t, got.Timeline, 2)
		assert.Equal(t, booking.StatusApproved, got.Timeline[1].Status)
		require.Len(t, got.Messages, 1)
		assert.Equal(t, "hello", got.Messages[0].Text)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM bookings WHERE id = \$1`).WithArgs(b.ID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, b.ID)
		assert.Equal(t, booking.ErrBookingNotFound{BookingID: b.ID}, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}
	b := sampleBooking(t)

	mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).WithArgs(b.ID).WillReturnRows(bookingRow(pgxmock.NewRows(bookingColumnNames), b))

	got, err := repo.LockForUpdate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, got.Status)
	assert.Equal(t, 1, got.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_UpdateState(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE bookings\s+SET status = \$1.*WHERE id = \$12 AND status = \$13 AND version = \$14`

	t.Run("compare and set succeeds", func(t *testing.T) {
		b := sampleBooking(t)
		_, err := b.TransitionTo(booking.StatusApproved, "")
		require.NoError(t, err)
		b.MarkDepositPaid()

		mock.ExpectExec(query).
			WithArgs(booking.StatusApproved, b.EndDate, 5, int64(500), int64(2525), int64(475),
				true, false, false, false, b.UpdatedAt, b.ID, booking.StatusPending, 1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateState(ctx, b, booking.StatusPending))
		assert.Equal(t, 2, b.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lost race", func(t *testing.T) {
		b := sampleBooking(t)
		mock.ExpectExec(query).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateState(ctx, b, booking.StatusPending)
		assert.True(t, errors.Is(err, shared.ErrConflict))
		assert.Equal(t, 1, b.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_HasReservationOverlap(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}

	itemID, exclude := uuid.New(), uuid.New()
	start := time.Now()
	end := start.Add(48 * time.Hour)

	mock.ExpectQuery(`status IN \('approved', 'active'\)\s+AND start_date <= \$3\s+AND end_date >= \$2`).
		WithArgs(itemID, start, end, exclude).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	conflict, err := repo.HasReservationOverlap(ctx, itemID, start, end, exclude)
	assert.NoError(t, err)
	assert.True(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_LockPendingOverlapping(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}

	sibling := sampleBooking(t)
	approved := uuid.New()

	mock.ExpectQuery(`AND status = 'pending'.*ORDER BY id\s+FOR UPDATE`).
		WithArgs(sibling.ItemID, sibling.StartDate, sibling.EndDate, approved).
		WillReturnRows(bookingRow(pgxmock.NewRows(bookingColumnNames), sibling))

	got, err := repo.LockPendingOverlapping(ctx, sibling.ItemID, sibling.StartDate, sibling.EndDate, approved)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, sibling.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_List(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}
	userID := uuid.New()

	t.Run("lender with status", func(t *testing.T) {
		mock.ExpectQuery(`FROM bookings WHERE lender_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
			WithArgs(userID, booking.StatusActive, 10, 0).
			WillReturnRows(pgxmock.NewRows(bookingColumnNames))

		got, err := repo.List(ctx, booking.ListFilter{UserID: userID, Role: booking.RoleLender, Status: booking.StatusActive, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("borrower any status", func(t *testing.T) {
		b := sampleBooking(t)
		mock.ExpectQuery(`FROM bookings WHERE borrower_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
			WithArgs(userID, 20, 40).
			WillReturnRows(bookingRow(pgxmock.NewRows(bookingColumnNames), b))

		got, err := repo.List(ctx, booking.ListFilter{UserID: userID, Role: booking.RoleBorrower, Limit: 20, Offset: 40})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_AppendMessage(t *testing.T) {
	ctx := context.Background()
	mock := newMockPool(t)
	repo := &BookingRepository{querier: mock, logger: newTestLogger()}

	bookingID := uuid.New()
	msg := booking.Message{SenderID: uuid.New(), Text: "see you at 9", CreatedAt: time.Now()}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_messages (booking_id, sender_id, text, created_at)`)).
		WithArgs(bookingID, msg.SenderID, msg.Text, msg.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.AppendMessage(ctx, bookingID, msg))
	assert.NoError(t, mock.ExpectationsWereMet())
}
