package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

type BookingQueryServiceImpl struct {
	bookingRepo booking.Repository
}

func NewBookingQueryService(bookingRepo booking.Repository) BookingQueryService {
	return &BookingQueryServiceImpl{bookingRepo: bookingRepo}
}

func (s *BookingQueryServiceImpl) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, shared.NewError(shared.KindForbidden, "only the borrower or the lender can view this booking")
	}
	return b, nil
}

func (s *BookingQueryServiceImpl) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	if filter.Role == "" {
		filter.Role = booking.RoleBorrower
	}
	if filter.Role != booking.RoleBorrower && filter.Role != booking.RoleLender {
		return nil, shared.ValidationErrorf("role must be borrower or lender")
	}
	return s.bookingRepo.List(ctx, filter)
}
