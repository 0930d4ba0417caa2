package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userRepo        user.Repository
	transactionRepo ledger.Repository
}

func NewUserService(userRepo user.Repository, transactionRepo ledger.Repository) UserService {
	return &UserServiceImpl{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

// CreateUser relies on the unique email index to reject duplicates
func (s *UserServiceImpl) CreateUser(ctx context.Context, name, email string) (*user.User, error) {
	u, err := user.NewUser(name, email)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Transaction, int64, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	txns, err := s.transactionRepo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactionRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
