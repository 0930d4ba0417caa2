package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/user"
)

type ItemServiceImpl struct {
	itemRepo item.Repository
	userRepo user.Repository
}

func NewItemService(itemRepo item.Repository, userRepo user.Repository) ItemService {
	return &ItemServiceImpl{
		itemRepo: itemRepo,
		userRepo: userRepo,
	}
}

// CreateItem lists a new available item for an existing user
func (s *ItemServiceImpl) CreateItem(ctx context.Context, cmd CreateItemCommand) (*item.Item, error) {
	if _, err := s.userRepo.GetByID(ctx, cmd.OwnerID); err != nil {
		return nil, err
	}

	i, err := item.NewItem(cmd.OwnerID, cmd.Title, cmd.DailyPrice, cmd.ItemValue, cmd.DepositPercentage)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

func (s *ItemServiceImpl) GetItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}
