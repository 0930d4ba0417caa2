package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/domain/pricing"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

// Status is a booking lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Default timeline notes
const (
	NoteCreated        = "Booking request created"
	NotePickup         = "Item pickup completed"
	NoteSiblingBlocked = "Dates booked by another request"
)

// transitions lists every reachable target per source state; anything else is rejected
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusActive, StatusCancelled},
	StatusActive:   {StatusCompleted},
}

// ParseStatus validates a status received from a caller
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusApproved, StatusActive, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", shared.ValidationErrorf("unknown booking status %q", raw)
}

// CanTransition reports whether from -> to is a defined lifecycle step
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves s
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// ReservesItem reports whether a booking in s blocks other reservations of its item
func (s Status) ReservesItem() bool {
	return s == StatusApproved || s == StatusActive
}

// Role selects which side of bookings to list for a user
type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

// Payment flags only ever move from false to true
type Payment struct {
	DepositPaid      bool `json:"deposit_paid"`
	DepositRefunded  bool `json:"deposit_refunded"`
	FinalPaymentMade bool `json:"final_payment_made"`
	LenderPaid       bool `json:"lender_paid"`
}

// TimelineEntry is one line of the booking audit trail
type TimelineEntry struct {
	Status    Status    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a note exchanged between borrower and lender
type Message struct {
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking is a reservation of an item over a date range with a frozen pricing snapshot
type Booking struct {
	ID         uuid.UUID        `json:"id"`
	ItemID     uuid.UUID        `json:"item_id"`
	BorrowerID uuid.UUID        `json:"borrower_id"`
	LenderID   uuid.UUID        `json:"lender_id"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    time.Time        `json:"end_date"`
	Status     Status           `json:"status"`
	Pricing    pricing.Snapshot `json:"pricing"`
	Payment    Payment          `json:"payment"`
	Version    int              `json:"version"` // For optimistic locking
	Timeline   []TimelineEntry  `json:"timeline"`
	Messages   []Message        `json:"messages"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// New creates a pending booking with its opening timeline entry
func New(itemID, borrowerID, lenderID uuid.UUID, start, end time.Time, snapshot pricing.Snapshot) (*Booking, error) {
	if !start.Before(end) {
		return nil, shared.ValidationErrorf("start date must be before end date")
	}

	now := time.Now().UTC()
	return &Booking{
		ID:         uuid.New(),
		ItemID:     itemID,
		BorrowerID: borrowerID,
		LenderID:   lenderID,
		StartDate:  start.UTC(),
		EndDate:    end.UTC(),
		Status:     StatusPending,
		Pricing:    snapshot,
		Version:    1,
		Timeline:   []TimelineEntry{{Status: StatusPending, Note: NoteCreated, CreatedAt: now}},
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsParticipant reports whether userID is the borrower or the lender
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return userID == b.BorrowerID || userID == b.LenderID
}

// Participants returns borrower and lender
func (b *Booking) Participants() []uuid.UUID {
	return []uuid.UUID{b.BorrowerID, b.LenderID}
}

// Overlaps uses inclusive bounds: touching ranges overlap
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !b.EndDate.Before(start)
}

// TransitionTo moves the booking to target and appends the timeline entry it produced.
func (b *Booking) TransitionTo(target Status, note string) (TimelineEntry, error) {
	if !CanTransition(b.Status, target) {
		return TimelineEntry{}, shared.NewError(shared.KindInvalidTransition,
			"cannot move booking from %s to %s", b.Status, target)
	}
	if note == "" {
		note = defaultNote(target)
	}

	now := time.Now().UTC()
	entry := TimelineEntry{Status: target, Note: note, CreatedAt: now}
	b.Status = target
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = now
	return entry, nil
}

// ExtendTo applies an extension priced by the caller and records it on the timeline
func (b *Booking) ExtendTo(newEnd time.Time, extended pricing.Snapshot) (TimelineEntry, error) {
	if !b.Status.ReservesItem() {
		return TimelineEntry{}, shared.NewError(shared.KindInvalidTransition,
			"cannot extend a %s booking", b.Status)
	}
	if !newEnd.After(b.EndDate) {
		return TimelineEntry{}, shared.ValidationErrorf("new end date must be after the current end date")
	}

	now := time.Now().UTC()
	entry := TimelineEntry{
		Status:    b.Status,
		Note:      fmt.Sprintf("Rental extended to %s", newEnd.UTC().Format("2006-01-02")),
		CreatedAt: now,
	}
	b.EndDate = newEnd.UTC()
	b.Pricing = extended
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = now
	return entry, nil
}

// AddMessage appends a message from one of the participants
func (b *Booking) AddMessage(senderID uuid.UUID, text string) (Message, error) {
	if !b.IsParticipant(senderID) {
		return Message{}, shared.NewError(shared.KindForbidden, "only the borrower or the lender can message on a booking")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, shared.ValidationErrorf("message text cannot be empty")
	}

	msg := Message{SenderID: senderID, Text: text, CreatedAt: time.Now().UTC()}
	b.Messages = append(b.Messages, msg)
	return msg, nil
}

// MarkDepositPaid records that the borrower was charged at approval
func (b *Booking) MarkDepositPaid() {
	b.Payment.DepositPaid = true
}

// MarkSettled records the completion payouts
func (b *Booking) MarkSettled() {
	b.Payment.FinalPaymentMade = true
	b.Payment.LenderPaid = true
	b.Payment.DepositRefunded = true
}

func defaultNote(target Status) string {
	switch target {
	case StatusApproved:
		return "Booking approved"
	case StatusActive:
		return NotePickup
	case StatusCompleted:
		return "Rental completed"
	case StatusCancelled:
		return "Booking cancelled"
	}
	return ""
}
