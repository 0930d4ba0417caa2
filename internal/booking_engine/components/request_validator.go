package components

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

const maxMessageLength = 2000

type RequestValidatorImpl struct {
	logger *slog.Logger
}

func NewRequestValidator(logger *slog.Logger) service.RequestValidator {
	return &RequestValidatorImpl{logger: logger}
}

func (v *RequestValidatorImpl) ValidateCreate(ctx context.Context, cmd service.CreateBookingCommand) error {
	if err := requireIDs(map[string]uuid.UUID{"item_id": cmd.ItemID, "borrower_id": cmd.BorrowerID}); err != nil {
		return v.reject(ctx, err)
	}
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() {
		return v.reject(ctx, shared.ValidationErrorf("start and end dates are required"))
	}
	if !cmd.StartDate.Before(cmd.EndDate) {
		return v.reject(ctx, shared.ValidationErrorf("start date must be before end date"))
	}
	if pricing.Days(cmd.StartDate, cmd.EndDate) > pricing.MaxRentalDays {
		return v.reject(ctx, shared.ValidationErrorf("rental cannot exceed %d days", pricing.MaxRentalDays))
	}
	return nil
}

func (v *RequestValidatorImpl) ValidateTransition(ctx context.Context, cmd service.TransitionCommand) error {
	if err := requireIDs(map[string]uuid.UUID{"booking_id": cmd.BookingID, "actor_id": cmd.ActorID}); err != nil {
		return v.reject(ctx, err)
	}
	if _, err := booking.ParseStatus(string(cmd.TargetStatus)); err != nil {
		return v.reject(ctx, err)
	}
	return nil
}

func (v *RequestValidatorImpl) ValidateExtend(ctx context.Context, cmd service.ExtendCommand) error {
	if err := requireIDs(map[string]uuid.UUID{"booking_id": cmd.BookingID, "actor_id": cmd.ActorID}); err != nil {
		return v.reject(ctx, err)
	}
	if cmd.NewEndDate.IsZero() {
		return v.reject(ctx, shared.ValidationErrorf("new end date is required"))
	}
	return nil
}

func (v *RequestValidatorImpl) ValidateMessage(ctx context.Context, cmd service.MessageCommand) error {
	if err := requireIDs(map[string]uuid.UUID{"booking_id": cmd.BookingID, "actor_id": cmd.ActorID}); err != nil {
		return v.reject(ctx, err)
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return v.reject(ctx, shared.ValidationErrorf("message text cannot be empty"))
	}
	if len(text) > maxMessageLength {
		return v.reject(ctx, shared.ValidationErrorf("message text exceeds %d characters", maxMessageLength))
	}
	return nil
}

func (v *RequestValidatorImpl) ValidateTopUp(ctx context.Context, cmd service.TopUpCommand) error {
	if err := requireIDs(map[string]uuid.UUID{"user_id": cmd.UserID, "actor_id": cmd.ActorID}); err != nil {
		return v.reject(ctx, err)
	}
	if cmd.Amount <= 0 {
		return v.reject(ctx, shared.ValidationErrorf("amount must be positive: %d", cmd.Amount))
	}
	if cmd.Amount > pricing.MaxAmount {
		return v.reject(ctx, shared.ValidationErrorf("amount out of range: %d", cmd.Amount))
	}
	return nil
}

func (v *RequestValidatorImpl) reject(ctx context.Context, err error) error {
	logger := v.logger
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = v.logger.With("correlation_id", correlationID)
	}
	logger.Info("Request failed validation", "error", err)
	return err
}

func requireIDs(ids map[string]uuid.UUID) error {
	for name, id := range ids {
		if id == uuid.Nil {
			return shared.ValidationErrorf("%s is required", name)
		}
	}
	return nil
}
