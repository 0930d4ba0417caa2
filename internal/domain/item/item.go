package item

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Stats accumulate completed rentals of an item
type Stats struct {
	Bookings      int64 `json:"bookings"`
	TotalEarnings int64 `json:"total_earnings"`
}

// Item is a listing that can be rented. The availability flag is written only by the booking core.
type Item struct {
	ID                uuid.UUID `json:"id"`
	OwnerID           uuid.UUID `json:"owner_id"`
	Title             string    `json:"title"`
	DailyPrice        int64     `json:"daily_price"`
	ItemValue         int64     `json:"item_value"`
	DepositPercentage int       `json:"deposit_percentage"`
	IsAvailable       bool      `json:"is_available"`
	Stats             Stats     `json:"stats"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewItem creates an available listing
func NewItem(ownerID uuid.UUID, title string, dailyPrice, itemValue int64, depositPercentage int) (*Item, error) {
	title = strings.TrimSpace(title)
	switch {
	case ownerID == uuid.Nil:
		return nil, shared.ValidationErrorf("item requires an owner")
	case title == "":
		return nil, shared.ValidationErrorf("title cannot be empty")
	case dailyPrice <= 0:
		return nil, shared.ValidationErrorf("daily price must be positive")
	case itemValue <= 0:
		return nil, shared.ValidationErrorf("item value must be positive")
	case dailyPrice > pricing.MaxAmount || itemValue > pricing.MaxAmount:
		return nil, shared.ValidationErrorf("price out of range")
	case depositPercentage < 0 || depositPercentage > 100:
		return nil, shared.ValidationErrorf("deposit percentage must be between 0 and 100")
	}

	now := time.Now().UTC()
	return &Item{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Title:             title,
		DailyPrice:        dailyPrice,
		ItemValue:         itemValue,
		DepositPercentage: depositPercentage,
		IsAvailable:       true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Terms returns the pricing inputs of the item under the given platform rate
func (i *Item) Terms(platformFeeBps int64) pricing.Terms {
	return pricing.Terms{
		DailyPrice:        i.DailyPrice,
		ItemValue:         i.ItemValue,
		DepositPercentage: i.DepositPercentage,
		PlatformFeeBps:    platformFeeBps,
	}
}
