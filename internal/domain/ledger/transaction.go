package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// TransactionType is the direction of a wallet posting
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Posting descriptions used by the booking core
const (
	DescriptionBookingPayment  = "Booking payment"
	DescriptionBookingRefund   = "Booking refund"
	DescriptionRentalEarnings  = "Rental earnings"
	DescriptionDepositRefund   = "Deposit refund"
	DescriptionRentalExtension = "Rental extension"
	DescriptionWalletTopUp     = "Wallet top-up"
)

// Posting is a request to move money into or out of one wallet
type Posting struct {
	UserID      uuid.UUID
	Amount      int64 // minor units, must be positive
	Description string
	BookingID   *uuid.UUID
}

// Validate checks the posting before any balance is touched
func (p Posting) Validate() error {
	if p.UserID == uuid.Nil {
		return shared.ValidationErrorf("posting requires a user")
	}
	if p.Amount <= 0 {
		return shared.ValidationErrorf("posting amount must be positive: %d", p.Amount)
	}
	return nil
}

// Transaction is one immutable line of a user's wallet history
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	Description  string          `json:"description"`
	BookingID    *uuid.UUID      `json:"booking_id,omitempty"`
	BalanceAfter int64           `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewTransaction records a posting that moved the balance to balanceAfter
func NewTransaction(p Posting, typ TransactionType, balanceAfter int64) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		UserID:       p.UserID,
		Type:         typ,
		Amount:       p.Amount,
		Description:  p.Description,
		BookingID:    p.BookingID,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedAmount is the balance delta of the transaction
func (t *Transaction) SignedAmount() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}
