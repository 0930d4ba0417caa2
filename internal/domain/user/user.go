package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Common errors
var (
	ErrEmptyName    = shared.ValidationErrorf("name cannot be empty")
	ErrInvalidEmail = shared.ValidationErrorf("email address is invalid")
)

// User is a marketplace member and the owner of a wallet
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Balance       int64     `json:"balance"`        // minor units
	TotalEarnings int64     `json:"total_earnings"` // lifetime rental earnings as a lender
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser creates a user with an empty wallet
func NewUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanAfford checks if the wallet covers amount without going negative
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}
