package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
	"github.com/rental-marketplace-core/internal/platform/metrics"
)

type BookingServiceImpl struct {
	db             TxRunner
	bookings       booking.Repository
	items          item.Repository
	users          user.Repository
	ledger         Ledger
	availability   AvailabilityChecker
	events         EventRecorder
	validator      RequestValidator
	platformFeeBps int64
	logger         *slog.Logger
}

func NewBookingService(
	db TxRunner,
	bookings booking.Repository,
	items item.Repository,
	users user.Repository,
	ledger Ledger,
	availability AvailabilityChecker,
	events EventRecorder,
	validator RequestValidator,
	platformFeeBps int64,
	logger *slog.Logger,
) BookingService {
	return &BookingServiceImpl{
		db:             db,
		bookings:       bookings,
		items:          items,
		users:          users,
		ledger:         ledger,
		availability:   availability,
		events:         events,
		validator:      validator,
		platformFeeBps: platformFeeBps,
		logger:         logger,
	}
}

// Create checks the request against the item and the borrower's balance and stores a pending booking.
// No money moves at creation.
func (s *BookingServiceImpl) Create(ctx context.Context, cmd CreateBookingCommand) (*booking.Booking, error) {
	logger := s.requestLogger(ctx)

	if err := s.validator.ValidateCreate(ctx, cmd); err != nil {
		return nil, err
	}

	var created *booking.Booking
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		items := s.items.WithTx(tx)

		listing, err := items.LockForUpdate(ctx, cmd.ItemID)
		if err != nil {
			return err
		}

		borrower, err := s.users.WithTx(tx).GetByID(ctx, cmd.BorrowerID)
		if err != nil {
			return err
		}

		if listing.OwnerID == borrower.ID {
			return shared.NewError(shared.KindInvalidOperation, "you cannot book your own item")
		}
		if !listing.IsAvailable {
			return shared.NewError(shared.KindUnavailable, "item is not available for booking")
		}

		conflict, err := s.availability.HasConflict(ctx, tx, listing.ID, cmd.StartDate, cmd.EndDate, uuid.Nil)
		if err != nil {
			return err
		}
		if conflict {
			return shared.NewError(shared.KindDateConflict, "item is already booked for the selected dates")
		}

		snapshot, err := pricing.Calculate(listing.Terms(s.platformFeeBps), cmd.StartDate, cmd.EndDate)
		if err != nil {
			return err
		}

		// Checked, not held: approval debits and checks again.
		if !borrower.CanAfford(snapshot.TotalAmount) {
			return shared.NewError(shared.KindInsufficientFunds,
				"insufficient balance: %d required, %d available", snapshot.TotalAmount, borrower.Balance)
		}

		b, err := booking.New(listing.ID, borrower.ID, listing.OwnerID, cmd.StartDate, cmd.EndDate, snapshot)
		if err != nil {
			return err
		}
		if err := s.bookings.WithTx(tx).Create(ctx, b); err != nil {
			return err
		}

		if err := s.record(ctx, tx, shared.EventBookingCreated, b, borrower.ID, snapshot.TotalAmount, booking.NoteCreated); err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		logFailure(logger, "Booking creation rejected", err, "item_id", cmd.ItemID.String(), "borrower_id", cmd.BorrowerID.String())
		return nil, err
	}

	metrics.BookingTransition("", string(booking.StatusPending))
	logger.Info("Booking created",
		"booking_id", created.ID.String(),
		"item_id", created.ItemID.String(),
		"total_amount", created.Pricing.TotalAmount,
	)
	return created, nil
}

// Transition applies one lifecycle step together with its money movements and item flag changes.
// Undefined steps, including re-applying a terminal status, fail with InvalidTransition.
func (s *BookingServiceImpl) Transition(ctx context.Context, cmd TransitionCommand) (*booking.Booking, error) {
	logger := s.requestLogger(ctx).With("booking_id", cmd.BookingID.String(), "target_status", string(cmd.TargetStatus))

	if err := s.validator.ValidateTransition(ctx, cmd); err != nil {
		return nil, err
	}

	var from booking.Status
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		b, listing, err := s.lockBookingAndItem(ctx, tx, cmd.BookingID)
		if err != nil {
			return err
		}
		from = b.Status

		if !b.IsParticipant(cmd.ActorID) {
			return shared.NewError(shared.KindForbidden, "only the borrower or the lender can change this booking")
		}
		if !booking.CanTransition(b.Status, cmd.TargetStatus) {
			return shared.NewError(shared.KindInvalidTransition,
				"cannot move booking from %s to %s", b.Status, cmd.TargetStatus)
		}

		switch cmd.TargetStatus {
		case booking.StatusApproved:
			return s.approve(ctx, tx, b, listing, cmd)
		case booking.StatusCancelled:
			return s.cancel(ctx, tx, b, cmd)
		case booking.StatusActive:
			return s.activate(ctx, tx, b, cmd)
		case booking.StatusCompleted:
			return s.complete(ctx, tx, b, cmd)
		}
		return shared.NewError(shared.KindInvalidTransition, "unsupported target status %s", cmd.TargetStatus)
	})
	if err != nil {
		logFailure(logger, "Booking transition rejected", err, "actor_id", cmd.ActorID.String())
		return nil, err
	}

	metrics.BookingTransition(string(from), string(cmd.TargetStatus))
	logger.Info("Booking transitioned", "from", string(from), "to", string(cmd.TargetStatus))
	return s.bookings.GetByID(ctx, cmd.BookingID)
}

// approve debits the borrower, reserves the item and cancels pending requests for overlapping dates
func (s *BookingServiceImpl) approve(ctx context.Context, tx pgx.Tx, b *booking.Booking, listing *item.Item, cmd TransitionCommand) error {
	if cmd.ActorID != b.LenderID {
		return shared.NewError(shared.KindForbidden, "only the lender can approve a booking")
	}
	if !listing.IsAvailable {
		return shared.NewError(shared.KindUnavailable, "item is not available for booking")
	}

	conflict, err := s.availability.HasConflict(ctx, tx, b.ItemID, b.StartDate, b.EndDate, b.ID)
	if err != nil {
		return err
	}
	if conflict {
		return shared.NewError(shared.KindDateConflict, "item is already booked for the selected dates")
	}

	accounts, err := s.ledger.LockAccounts(ctx, tx, b.BorrowerID)
	if err != nil {
		return err
	}
	if borrower := accounts[b.BorrowerID]; !borrower.CanAfford(b.Pricing.TotalAmount) {
		return shared.NewError(shared.KindInsufficientFunds,
			"borrower balance no longer covers the booking: %d required, %d available", b.Pricing.TotalAmount, borrower.Balance)
	}

	bookingID := b.ID
	if _, err := s.ledger.Debit(ctx, tx, ledger.Posting{
		UserID:      b.BorrowerID,
		Amount:      b.Pricing.TotalAmount,
		Description: ledger.DescriptionBookingPayment,
		BookingID:   &bookingID,
	}); err != nil {
		return err
	}

	b.MarkDepositPaid()
	entry, err := s.commitStatus(ctx, tx, b, booking.StatusApproved, cmd.Note)
	if err != nil {
		return err
	}

	if err := s.items.WithTx(tx).SetAvailability(ctx, b.ItemID, false); err != nil {
		return err
	}

	if err := s.record(ctx, tx, shared.EventBookingApproved, b, cmd.ActorID, b.Pricing.TotalAmount, entry.Note); err != nil {
		return err
	}

	return s.cancelSiblings(ctx, tx, b)
}

// cancelSiblings rejects pending requests that can no longer be approved for the reserved dates
func (s *BookingServiceImpl) cancelSiblings(ctx context.Context, tx pgx.Tx, approved *booking.Booking) error {
	siblings, err := s.bookings.WithTx(tx).LockPendingOverlapping(ctx, approved.ItemID, approved.StartDate, approved.EndDate, approved.ID)
	if err != nil {
		return err
	}

	for _, sibling := range siblings {
		entry, err := s.commitStatus(ctx, tx, sibling, booking.StatusCancelled, booking.NoteSiblingBlocked)
		if err != nil {
			return err
		}
		if err := s.record(ctx, tx, shared.EventBookingCancelled, sibling, approved.LenderID, 0, entry.Note); err != nil {
			return err
		}
		metrics.BookingTransition(string(booking.StatusPending), string(booking.StatusCancelled))
	}

	if len(siblings) > 0 {
		s.requestLogger(ctx).Info("Cancelled overlapping pending bookings",
			"approved_booking_id", approved.ID.String(),
			"count", len(siblings),
		)
	}
	return nil
}

// cancel refunds everything debited so far and releases the item if this booking held it
func (s *BookingServiceImpl) cancel(ctx context.Context, tx pgx.Tx, b *booking.Booking, cmd TransitionCommand) error {
	if cmd.ActorID != b.LenderID {
		return shared.NewError(shared.KindForbidden, "only the lender can cancel a booking")
	}

	heldItem := b.Status.ReservesItem()
	var refund int64
	if b.Payment.DepositPaid {
		refund = b.Pricing.TotalAmount
		bookingID := b.ID
		if _, err := s.ledger.Credit(ctx, tx, ledger.Posting{
			UserID:      b.BorrowerID,
			Amount:      refund,
			Description: ledger.DescriptionBookingRefund,
			BookingID:   &bookingID,
		}); err != nil {
			return err
		}
	}

	entry, err := s.commitStatus(ctx, tx, b, booking.StatusCancelled, cmd.Note)
	if err != nil {
		return err
	}

	if heldItem {
		if err := s.items.WithTx(tx).SetAvailability(ctx, b.ItemID, true); err != nil {
			return err
		}
	}

	return s.record(ctx, tx, shared.EventBookingCancelled, b, cmd.ActorID, refund, entry.Note)
}

// activate confirms pickup; the item stays reserved
func (s *BookingServiceImpl) activate(ctx context.Context, tx pgx.Tx, b *booking.Booking, cmd TransitionCommand) error {
	entry, err := s.commitStatus(ctx, tx, b, booking.StatusActive, cmd.Note)
	if err != nil {
		return err
	}
	return s.record(ctx, tx, shared.EventBookingActivated, b, cmd.ActorID, 0, entry.Note)
}

// complete pays the lender, returns the deposit and releases the item
func (s *BookingServiceImpl) complete(ctx context.Context, tx pgx.Tx, b *booking.Booking, cmd TransitionCommand) error {
	if _, err := s.ledger.LockAccounts(ctx, tx, b.LenderID, b.BorrowerID); err != nil {
		return err
	}

	bookingID := b.ID
	earnings := b.Pricing.LenderEarnings
	if earnings > 0 {
		if _, err := s.ledger.Credit(ctx, tx, ledger.Posting{
			UserID:      b.LenderID,
			Amount:      earnings,
			Description: ledger.DescriptionRentalEarnings,
			BookingID:   &bookingID,
		}); err != nil {
			return err
		}
		if err := s.users.WithTx(tx).AddEarnings(ctx, b.LenderID, earnings); err != nil {
			return err
		}
	}

	if b.Pricing.DepositAmount > 0 {
		if _, err := s.ledger.Credit(ctx, tx, ledger.Posting{
			UserID:      b.BorrowerID,
			Amount:      b.Pricing.DepositAmount,
			Description: ledger.DescriptionDepositRefund,
			BookingID:   &bookingID,
		}); err != nil {
			return err
		}
	}

	b.MarkSettled()
	entry, err := s.commitStatus(ctx, tx, b, booking.StatusCompleted, cmd.Note)
	if err != nil {
		return err
	}

	items := s.items.WithTx(tx)
	if err := items.SetAvailability(ctx, b.ItemID, true); err != nil {
		return err
	}
	if err := items.RecordCompletedRental(ctx, b.ItemID, earnings); err != nil {
		return err
	}

	return s.record(ctx, tx, shared.EventBookingCompleted, b, cmd.ActorID, earnings, entry.Note)
}

// Extend moves the end date forward and charges the borrower for the added days right away
func (s *BookingServiceImpl) Extend(ctx context.Context, cmd ExtendCommand) (*booking.Booking, error) {
	logger := s.requestLogger(ctx).With("booking_id", cmd.BookingID.String())

	if err := s.validator.ValidateExtend(ctx, cmd); err != nil {
		return nil, err
	}

	var additionalCost int64
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		b, _, err := s.lockBookingAndItem(ctx, tx, cmd.BookingID)
		if err != nil {
			return err
		}

		if cmd.ActorID != b.LenderID {
			return shared.NewError(shared.KindForbidden, "only the lender can extend a rental")
		}
		if !b.Status.ReservesItem() {
			return shared.NewError(shared.KindInvalidTransition, "cannot extend a %s booking", b.Status)
		}

		extended, cost, err := pricing.Extend(b.Pricing, b.EndDate, cmd.NewEndDate)
		if err != nil {
			return err
		}

		conflict, err := s.availability.HasConflict(ctx, tx, b.ItemID, b.StartDate, cmd.NewEndDate, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return shared.NewError(shared.KindDateConflict, "item is already booked for the extended dates")
		}

		accounts, err := s.ledger.LockAccounts(ctx, tx, b.BorrowerID)
		if err != nil {
			return err
		}
		if borrower := accounts[b.BorrowerID]; !borrower.CanAfford(cost) {
			return shared.NewError(shared.KindInsufficientFunds,
				"insufficient balance for extension: %d required, %d available", cost, borrower.Balance)
		}

		bookingID := b.ID
		if _, err := s.ledger.Debit(ctx, tx, ledger.Posting{
			UserID:      b.BorrowerID,
			Amount:      cost,
			Description: ledger.DescriptionRentalExtension,
			BookingID:   &bookingID,
		}); err != nil {
			return err
		}

		expected := b.Status
		entry, err := b.ExtendTo(cmd.NewEndDate, extended)
		if err != nil {
			return err
		}
		if err := s.persist(ctx, tx, b, expected, entry); err != nil {
			return err
		}

		additionalCost = cost
		return s.record(ctx, tx, shared.EventBookingExtended, b, cmd.ActorID, cost, entry.Note)
	})
	if err != nil {
		logFailure(logger, "Booking extension rejected", err, "actor_id", cmd.ActorID.String())
		return nil, err
	}

	logger.Info("Booking extended", "new_end_date", cmd.NewEndDate.Format(time.DateOnly), "additional_cost", additionalCost)
	return s.bookings.GetByID(ctx, cmd.BookingID)
}

// AddMessage appends a participant message; the booking status is untouched
func (s *BookingServiceImpl) AddMessage(ctx context.Context, cmd MessageCommand) (*booking.Message, error) {
	logger := s.requestLogger(ctx).With("booking_id", cmd.BookingID.String())

	if err := s.validator.ValidateMessage(ctx, cmd); err != nil {
		return nil, err
	}

	var msg booking.Message
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		bookings := s.bookings.WithTx(tx)

		b, err := bookings.LockForUpdate(ctx, cmd.BookingID)
		if err != nil {
			return err
		}

		msg, err = b.AddMessage(cmd.ActorID, cmd.Text)
		if err != nil {
			return err
		}
		if err := bookings.AppendMessage(ctx, b.ID, msg); err != nil {
			return err
		}

		return s.record(ctx, tx, shared.EventBookingMessageAdded, b, cmd.ActorID, 0, "")
	})
	if err != nil {
		logFailure(logger, "Booking message rejected", err, "actor_id", cmd.ActorID.String())
		return nil, err
	}

	logger.Info("Booking message added", "sender_id", cmd.ActorID.String())
	return &msg, nil
}

// lockBookingAndItem takes the item lock before the booking lock. Every writer that touches both
// follows this order, which keeps approvals that cancel siblings free of lock cycles.
func (s *BookingServiceImpl) lockBookingAndItem(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) (*booking.Booking, *item.Item, error) {
	bookings := s.bookings.WithTx(tx)

	current, err := bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	listing, err := s.items.WithTx(tx).LockForUpdate(ctx, current.ItemID)
	if err != nil {
		return nil, nil, err
	}

	locked, err := bookings.LockForUpdate(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return locked, listing, nil
}

// commitStatus applies target to b and persists it against the status b was loaded with
func (s *BookingServiceImpl) commitStatus(ctx context.Context, tx pgx.Tx, b *booking.Booking, target booking.Status, note string) (booking.TimelineEntry, error) {
	expected := b.Status
	entry, err := b.TransitionTo(target, note)
	if err != nil {
		return booking.TimelineEntry{}, err
	}
	if err := s.persist(ctx, tx, b, expected, entry); err != nil {
		return booking.TimelineEntry{}, err
	}
	return entry, nil
}

func (s *BookingServiceImpl) persist(ctx context.Context, tx pgx.Tx, b *booking.Booking, expected booking.Status, entry booking.TimelineEntry) error {
	bookings := s.bookings.WithTx(tx)
	if err := bookings.UpdateState(ctx, b, expected); err != nil {
		return err
	}
	return bookings.AppendTimeline(ctx, b.ID, entry)
}

func (s *BookingServiceImpl) record(ctx context.Context, tx pgx.Tx, typ shared.EventType, b *booking.Booking, actorID uuid.UUID, amount int64, note string) error {
	return s.events.Record(ctx, tx, &shared.BookingEvent{
		Type:         typ,
		BookingID:    b.ID,
		ItemID:       b.ItemID,
		ActorID:      actorID,
		Participants: b.Participants(),
		Status:       string(b.Status),
		Amount:       amount,
		Note:         note,
	})
}

func (s *BookingServiceImpl) requestLogger(ctx context.Context) *slog.Logger {
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		return s.logger.With("correlation_id", correlationID)
	}
	return s.logger
}

// logFailure logs rejected requests at warn and infrastructure failures at error
func logFailure(logger *slog.Logger, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if _, ok := shared.KindOf(err); ok {
		logger.Warn(msg, args...)
		return
	}
	logger.Error(msg, args...)
}
