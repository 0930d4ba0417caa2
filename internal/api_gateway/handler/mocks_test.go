package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
	bookingsvc "github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/activity"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/user"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, name, email string) (*user.User, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Transaction, int64, error) {
	args := m.Called(ctx, userID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*ledger.Transaction), args.Get(1).(int64), args.Error(2)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) TopUp(ctx context.Context, cmd bookingsvc.TopUpCommand) (*ledger.Transaction, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) CreateItem(ctx context.Context, cmd service.CreateItemCommand) (*item.Item, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockItemService) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, cmd bookingsvc.CreateBookingCommand) (*booking.Booking, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) Transition(ctx context.Context, cmd bookingsvc.TransitionCommand) (*booking.Booking, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) Extend(ctx context.Context, cmd bookingsvc.ExtendCommand) (*booking.Booking, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) AddMessage(ctx context.Context, cmd bookingsvc.MessageCommand) (*booking.Message, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Message), args.Error(1)
}

type MockBookingQueryService struct {
	mock.Mock
}

func (m *MockBookingQueryService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingQueryService) ListBookings(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) UserActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*activity.Entry, int64, error) {
	args := m.Called(ctx, userID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*activity.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityService) BookingActivity(ctx context.Context, bookingID, actorID uuid.UUID, page, perPage int) ([]*activity.Entry, error) {
	args := m.Called(ctx, bookingID, actorID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*activity.Entry), args.Error(1)
}
