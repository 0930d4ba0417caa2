package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rental-marketplace-core/internal/domain/activity"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// CreateUserRequest represents a request to register a member
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// TopUpRequest represents a request to add funds to a wallet
type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// UserResponse represents a user and wallet balance in API responses
type UserResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Balance       int64  `json:"balance"`
	TotalEarnings int64  `json:"total_earnings"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// TransactionResponse represents a wallet history line in API responses
type TransactionResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Type         string `json:"type"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description"`
	BookingID    string `json:"booking_id,omitempty"`
	BalanceAfter int64  `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// CreateItemRequest represents a new listing; the owner is the calling user
type CreateItemRequest struct {
	Title             string `json:"title" binding:"required"`
	DailyPrice        int64  `json:"daily_price" binding:"required,gt=0"`
	ItemValue         int64  `json:"item_value" binding:"required,gt=0"`
	DepositPercentage int    `json:"deposit_percentage" binding:"min=0,max=100"`
}

// ItemResponse represents a listing in API responses
type ItemResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	Title             string     `json:"title"`
	DailyPrice        int64      `json:"daily_price"`
	ItemValue         int64      `json:"item_value"`
	DepositPercentage int        `json:"deposit_percentage"`
	IsAvailable       bool       `json:"is_available"`
	Stats             item.Stats `json:"stats"`
	CreatedAt         string     `json:"created_at"`
}

// CreateBookingRequest represents a booking request by the calling user
type CreateBookingRequest struct {
	ItemID    string `json:"item_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// UpdateStatusRequest represents a status transition request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ExtendBookingRequest represents a rental extension request
type ExtendBookingRequest struct {
	NewEndDate string `json:"new_end_date" binding:"required"`
}

// MessageRequest represents a note sent to the other participant
type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListBookingsParams represents the query of the booking list endpoint
type ListBookingsParams struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	PaginationParams
}

// BookingResponse represents a booking with its timeline and messages
type BookingResponse struct {
	ID         string                  `json:"id"`
	ItemID     string                  `json:"item_id"`
	BorrowerID string                  `json:"borrower_id"`
	LenderID   string                  `json:"lender_id"`
	StartDate  string                  `json:"start_date"`
	EndDate    string                  `json:"end_date"`
	Status     string                  `json:"status"`
	Pricing    pricing.Snapshot        `json:"pricing"`
	Payment    booking.Payment         `json:"payment"`
	Timeline   []booking.TimelineEntry `json:"timeline"`
	Messages   []booking.Message       `json:"messages"`
	CreatedAt  string                  `json:"created_at"`
	UpdatedAt  string                  `json:"updated_at"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// parseDate accepts a calendar date (2006-01-02) or a full RFC 3339 timestamp
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field)
	}
	return t.UTC(), nil
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Balance:       u.Balance,
		TotalEarnings: u.TotalEarnings,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(txn *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:           txn.ID.String(),
		UserID:       txn.UserID.String(),
		Type:         string(txn.Type),
		Amount:       txn.Amount,
		Description:  txn.Description,
		BalanceAfter: txn.BalanceAfter,
		CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.BookingID != nil {
		resp.BookingID = txn.BookingID.String()
	}
	return resp
}

func mapItemToResponse(i *item.Item) ItemResponse {
	return ItemResponse{
		ID:                i.ID.String(),
		OwnerID:           i.OwnerID.String(),
		Title:             i.Title,
		DailyPrice:        i.DailyPrice,
		ItemValue:         i.ItemValue,
		DepositPercentage: i.DepositPercentage,
		IsAvailable:       i.IsAvailable,
		Stats:             i.Stats,
		CreatedAt:         i.CreatedAt.Format(time.RFC3339),
	}
}

func mapBookingToResponse(b *booking.Booking) BookingResponse {
	timeline := b.Timeline
	if timeline == nil {
		timeline = []booking.TimelineEntry{}
	}
	messages := b.Messages
	if messages == nil {
		messages = []booking.Message{}
	}
	return BookingResponse{
		ID:         b.ID.String(),
		ItemID:     b.ItemID.String(),
		BorrowerID: b.BorrowerID.String(),
		LenderID:   b.LenderID.String(),
		StartDate:  b.StartDate.Format(time.DateOnly),
		EndDate:    b.EndDate.Format(time.DateOnly),
		Status:     string(b.Status),
		Pricing:    b.Pricing,
		Payment:    b.Payment,
		Timeline:   timeline,
		Messages:   messages,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  b.UpdatedAt.Format(time.RFC3339),
	}
}

func mapBookingsToResponse(bookings []*booking.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, mapBookingToResponse(b))
	}
	return out
}

// activityOrEmpty keeps an empty feed serialised as [] rather than null
func activityOrEmpty(entries []*activity.Entry) []*activity.Entry {
	if entries == nil {
		return []*activity.Entry{}
	}
	return entries
}
