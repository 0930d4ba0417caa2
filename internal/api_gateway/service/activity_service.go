package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/activity"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// ActivityServiceImpl serves the Mongo activity projection. The feed lags the booking core
// by the relay delay and may briefly miss the newest events.
type ActivityServiceImpl struct {
	activityRepo activity.Repository
	bookingRepo  booking.Repository
}

func NewActivityService(activityRepo activity.Repository, bookingRepo booking.Repository) ActivityService {
	return &ActivityServiceImpl{
		activityRepo: activityRepo,
		bookingRepo:  bookingRepo,
	}
}

func (s *ActivityServiceImpl) UserActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*activity.Entry, int64, error) {
	offset := (page - 1) * perPage
	entries, err := s.activityRepo.ListByParticipant(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.activityRepo.CountByParticipant(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *ActivityServiceImpl) BookingActivity(ctx context.Context, bookingID, actorID uuid.UUID, page, perPage int) ([]*activity.Entry, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, shared.NewError(shared.KindForbidden, "only the borrower or the lender can view this booking")
	}
	return s.activityRepo.ListByBooking(ctx, bookingID, perPage, (page-1)*perPage)
}
