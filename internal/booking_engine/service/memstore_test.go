package service_test

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/outbox"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// memStore is an in-memory stand-in for the Postgres schema. ExecuteTx holds one store-wide
// lock for the whole callback and restores a snapshot when the callback fails, which gives
// the same all-or-nothing commit and per-row serialisation the row locks give in Postgres.
type memStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	users    map[uuid.UUID]user.User
	items    map[uuid.UUID]item.Item
	bookings map[uuid.UUID]booking.Booking
	txns     []ledger.Transaction
	outbox   []outbox.Message
}

func newMemStore() *memStore {
	return &memStore{state: memState{
		users:    map[uuid.UUID]user.User{},
		items:    map[uuid.UUID]item.Item{},
		bookings: map[uuid.UUID]booking.Booking{},
	}}
}

func (s memState) clone() memState {
	c := memState{
		users:    make(map[uuid.UUID]user.User, len(s.users)),
		items:    make(map[uuid.UUID]item.Item, len(s.items)),
		bookings: make(map[uuid.UUID]booking.Booking, len(s.bookings)),
		txns:     slices.Clone(s.txns),
		outbox:   slices.Clone(s.outbox),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.bookings {
		v.Timeline = slices.Clone(v.Timeline)
		v.Messages = slices.Clone(v.Messages)
		c.bookings[k] = v
	}
	return c
}

func (s *memStore) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(nil); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// guard locks the store for calls made outside ExecuteTx
func (s *memStore) guard(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// read runs fn under the store lock; used by test assertions
func (s *memStore) read(fn func(st *memState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (s *memStore) users() *memUsers       { return &memUsers{s: s} }
func (s *memStore) items() *memItems       { return &memItems{s: s} }
func (s *memStore) bookings() *memBookings { return &memBookings{s: s} }
func (s *memStore) ledger() *memLedger     { return &memLedger{s: s} }
func (s *memStore) outboxRepo() *memOutbox { return &memOutbox{s: s} }

type memUsers struct {
	s    *memStore
	inTx bool
}

func (r *memUsers) WithTx(pgx.Tx) user.Repository { return &memUsers{s: r.s, inTx: true} }

func (r *memUsers) Create(_ context.Context, u *user.User) error {
	defer r.s.guard(r.inTx)()
	for _, existing := range r.s.state.users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail{Email: u.Email}
		}
	}
	r.s.state.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	defer r.s.guard(r.inTx)()
	u, ok := r.s.state.users[id]
	if !ok {
		return nil, user.ErrUserNotFound{UserID: id}
	}
	return &u, nil
}

func (r *memUsers) LockForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUsers) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	defer r.s.guard(r.inTx)()
	u, ok := r.s.state.users[id]
	if !ok {
		return 0, user.ErrUserNotFound{UserID: id}
	}
	u.Balance += delta
	r.s.state.users[id] = u
	return u.Balance, nil
}

func (r *memUsers) AddEarnings(_ context.Context, id uuid.UUID, amount int64) error {
	defer r.s.guard(r.inTx)()
	u, ok := r.s.state.users[id]
	if !ok {
		return user.ErrUserNotFound{UserID: id}
	}
	u.TotalEarnings += amount
	r.s.state.users[id] = u
	return nil
}

type memItems struct {
	s    *memStore
	inTx bool
}

func (r *memItems) WithTx(pgx.Tx) item.Repository { return &memItems{s: r.s, inTx: true} }

func (r *memItems) Create(_ context.Context, i *item.Item) error {
	defer r.s.guard(r.inTx)()
	r.s.state.items[i.ID] = *i
	return nil
}

func (r *memItems) GetByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	defer r.s.guard(r.inTx)()
	i, ok := r.s.state.items[id]
	if !ok {
		return nil, item.ErrItemNotFound{ItemID: id}
	}
	return &i, nil
}

func (r *memItems) LockForUpdate(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *memItems) SetAvailability(_ context.Context, id uuid.UUID, available bool) error {
	defer r.s.guard(r.inTx)()
	i, ok := r.s.state.items[id]
	if !ok {
		return item.ErrItemNotFound{ItemID: id}
	}
	i.IsAvailable = available
	r.s.state.items[id] = i
	return nil
}

func (r *memItems) RecordCompletedRental(_ context.Context, id uuid.UUID, earnings int64) error {
	defer r.s.guard(r.inTx)()
	i, ok := r.s.state.items[id]
	if !ok {
		return item.ErrItemNotFound{ItemID: id}
	}
	i.Stats.Bookings++
	i.Stats.TotalEarnings += earnings
	r.s.state.items[id] = i
	return nil
}

type memBookings struct {
	s    *memStore
	inTx bool
}

func (r *memBookings) WithTx(pgx.Tx) booking.Repository { return &memBookings{s: r.s, inTx: true} }

func (r *memBookings) Create(_ context.Context, b *booking.Booking) error {
	defer r.s.guard(r.inTx)()
	stored := *b
	stored.Timeline = slices.Clone(b.Timeline)
	stored.Messages = slices.Clone(b.Messages)
	r.s.state.bookings[b.ID] = stored
	return nil
}

func (r *memBookings) GetByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	defer r.s.guard(r.inTx)()
	b, ok := r.s.state.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound{BookingID: id}
	}
	b.Timeline = slices.Clone(b.Timeline)
	b.Messages = slices.Clone(b.Messages)
	return &b, nil
}

func (r *memBookings) LockForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	defer r.s.guard(r.inTx)()
	b, ok := r.s.state.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound{BookingID: id}
	}
	b.Timeline = nil
	b.Messages = nil
	return &b, nil
}

func (r *memBookings) UpdateState(_ context.Context, b *booking.Booking, expected booking.Status) error {
	defer r.s.guard(r.inTx)()
	stored, ok := r.s.state.bookings[b.ID]
	if !ok || stored.Status != expected || stored.Version != b.Version {
		return booking.ErrConcurrentModification{BookingID: b.ID}
	}
	stored.Status = b.Status
	stored.EndDate = b.EndDate
	stored.Pricing = b.Pricing
	stored.Payment = b.Payment
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.s.state.bookings[b.ID] = stored
	b.Version = stored.Version
	return nil
}

func (r *memBookings) AppendTimeline(_ context.Context, id uuid.UUID, entry booking.TimelineEntry) error {
	defer r.s.guard(r.inTx)()
	b := r.s.state.bookings[id]
	b.Timeline = append(slices.Clone(b.Timeline), entry)
	r.s.state.bookings[id] = b
	return nil
}

func (r *memBookings) AppendMessage(_ context.Context, id uuid.UUID, msg booking.Message) error {
	defer r.s.guard(r.inTx)()
	b := r.s.state.bookings[id]
	b.Messages = append(slices.Clone(b.Messages), msg)
	r.s.state.bookings[id] = b
	return nil
}

func (r *memBookings) HasReservationOverlap(_ context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) (bool, error) {
	defer r.s.guard(r.inTx)()
	for _, b := range r.s.state.bookings {
		if b.ItemID == itemID && b.ID != exclude && b.Status.ReservesItem() && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookings) LockPendingOverlapping(_ context.Context, itemID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*booking.Booking, error) {
	defer r.s.guard(r.inTx)()
	var out []*booking.Booking
	for _, b := range r.s.state.bookings {
		b := b
		if b.ItemID == itemID && b.ID != exclude && b.Status == booking.StatusPending && b.Overlaps(start, end) {
			b.Timeline = nil
			b.Messages = nil
			out = append(out, &b)
		}
	}
	slices.SortFunc(out, func(a, b *booking.Booking) int { return bytes.Compare(a.ID[:], b.ID[:]) })
	return out, nil
}

func (r *memBookings) List(_ context.Context, filter booking.ListFilter) ([]*booking.Booking, error) {
	defer r.s.guard(r.inTx)()
	var out []*booking.Booking
	for _, b := range r.s.state.bookings {
		b := b
		party := b.BorrowerID
		if filter.Role == booking.RoleLender {
			party = b.LenderID
		}
		if party != filter.UserID || (filter.Status != "" && b.Status != filter.Status) {
			continue
		}
		out = append(out, &b)
	}
	return out, nil
}

type memLedger struct {
	s    *memStore
	inTx bool
}

func (r *memLedger) WithTx(pgx.Tx) ledger.Repository { return &memLedger{s: r.s, inTx: true} }

func (r *memLedger) Create(_ context.Context, txn *ledger.Transaction) error {
	defer r.s.guard(r.inTx)()
	r.s.state.txns = append(r.s.state.txns, *txn)
	return nil
}

func (r *memLedger) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Transaction, error) {
	defer r.s.guard(r.inTx)()
	var out []*ledger.Transaction
	for i := len(r.s.state.txns) - 1; i >= 0; i-- {
		if txn := r.s.state.txns[i]; txn.UserID == userID {
			out = append(out, &txn)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (r *memLedger) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	defer r.s.guard(r.inTx)()
	var n int64
	for _, txn := range r.s.state.txns {
		if txn.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memLedger) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*ledger.Transaction, error) {
	defer r.s.guard(r.inTx)()
	var out []*ledger.Transaction
	for _, txn := range r.s.state.txns {
		txn := txn
		if txn.BookingID != nil && *txn.BookingID == bookingID {
			out = append(out, &txn)
		}
	}
	return out, nil
}

type memOutbox struct {
	s    *memStore
	inTx bool
}

func (r *memOutbox) WithTx(pgx.Tx) outbox.Repository { return &memOutbox{s: r.s, inTx: true} }

func (r *memOutbox) Create(_ context.Context, m *outbox.Message) error {
	defer r.s.guard(r.inTx)()
	m.ID = int64(len(r.s.state.outbox) + 1)
	r.s.state.outbox = append(r.s.state.outbox, *m)
	return nil
}

func (r *memOutbox) GetPending(_ context.Context, limit int) ([]*outbox.Message, error) {
	defer r.s.guard(r.inTx)()
	var out []*outbox.Message
	for _, m := range r.s.state.outbox {
		m := m
		if m.Status == shared.OutboxStatusPending && len(out) < limit {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *memOutbox) UpdateStatus(_ context.Context, id int64, status shared.OutboxStatus) error {
	defer r.s.guard(r.inTx)()
	r.s.state.outbox[id-1].Status = status
	return nil
}

func (r *memOutbox) IncrementAttempts(_ context.Context, id int64) error {
	defer r.s.guard(r.inTx)()
	r.s.state.outbox[id-1].Attempts++
	return nil
}

