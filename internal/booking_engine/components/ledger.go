package components

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/shared"
	"github.com/rental-marketplace-core/internal/domain/user"
	"github.com/rental-marketplace-core/internal/platform/metrics"
)

// LedgerImpl moves money between wallets. Each posting is an atomic balance update plus
// an append to the transaction log, both inside the caller's transaction.
type LedgerImpl struct {
	userRepo        user.Repository
	transactionRepo ledger.Repository
	events          service.EventRecorder
	logger          *slog.Logger
}

func NewLedger(userRepo user.Repository, transactionRepo ledger.Repository, events service.EventRecorder, logger *slog.Logger) service.Ledger {
	return &LedgerImpl{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		events:          events,
		logger:          logger,
	}
}

// LockAccounts locks in ascending id order so concurrent settlements never wait on each other in a cycle
func (l *LedgerImpl) LockAccounts(ctx context.Context, tx pgx.Tx, userIDs ...uuid.UUID) (map[uuid.UUID]*user.User, error) {
	ids := slices.Clone(userIDs)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	users := l.userRepo.WithTx(tx)
	locked := make(map[uuid.UUID]*user.User, len(ids))
	for _, id := range ids {
		u, err := users.LockForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = u
	}
	return locked, nil
}

func (l *LedgerImpl) Credit(ctx context.Context, tx pgx.Tx, posting ledger.Posting) (*ledger.Transaction, error) {
	return l.post(ctx, tx, posting, ledger.TransactionTypeCredit)
}

// Debit does not refuse to overdraw; callers check the balance under the account lock first
func (l *LedgerImpl) Debit(ctx context.Context, tx pgx.Tx, posting ledger.Posting) (*ledger.Transaction, error) {
	return l.post(ctx, tx, posting, ledger.TransactionTypeDebit)
}

func (l *LedgerImpl) post(ctx context.Context, tx pgx.Tx, posting ledger.Posting, typ ledger.TransactionType) (*ledger.Transaction, error) {
	logger := l.logger
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = l.logger.With("correlation_id", correlationID)
	}

	if err := posting.Validate(); err != nil {
		return nil, err
	}

	delta := posting.Amount
	if typ == ledger.TransactionTypeDebit {
		delta = -delta
	}

	balance, err := l.userRepo.WithTx(tx).AdjustBalance(ctx, posting.UserID, delta)
	if err != nil {
		return nil, err
	}

	txn := ledger.NewTransaction(posting, typ, balance)
	if err := l.transactionRepo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record %s for user %s: %w", typ, posting.UserID, err)
	}

	event := &shared.BookingEvent{
		Type:   shared.EventWalletCredited,
		UserID: posting.UserID,
		Amount: posting.Amount,
		Note:   posting.Description,
	}
	if typ == ledger.TransactionTypeDebit {
		event.Type = shared.EventWalletDebited
	}
	if posting.BookingID != nil {
		event.BookingID = *posting.BookingID
	}
	if err := l.events.Record(ctx, tx, event); err != nil {
		return nil, err
	}

	metrics.LedgerPosting(string(typ), posting.Description, posting.Amount)
	logger.Info("Wallet posting recorded",
		"user_id", posting.UserID.String(),
		"type", string(typ),
		"amount", posting.Amount,
		"balance_after", balance,
		"description", posting.Description,
	)
	return txn, nil
}
