package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/shared"
)

type WalletServiceImpl struct {
	db        TxRunner
	ledger    Ledger
	validator RequestValidator
	logger    *slog.Logger
}

func NewWalletService(db TxRunner, ledger Ledger, validator RequestValidator, logger *slog.Logger) WalletService {
	return &WalletServiceImpl{
		db:        db,
		ledger:    ledger,
		validator: validator,
		logger:    logger,
	}
}

// TopUp credits the actor's own wallet outside any booking
func (s *WalletServiceImpl) TopUp(ctx context.Context, cmd TopUpCommand) (*ledger.Transaction, error) {
	logger := s.logger.With("user_id", cmd.UserID.String())
	if correlationID := shared.CorrelationIDFromContext(ctx); correlationID != "" {
		logger = logger.With("correlation_id", correlationID)
	}

	if err := s.validator.ValidateTopUp(ctx, cmd); err != nil {
		return nil, err
	}
	if cmd.ActorID != cmd.UserID {
		return nil, shared.NewError(shared.KindForbidden, "you can only top up your own wallet")
	}

	var txn *ledger.Transaction
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.ledger.LockAccounts(ctx, tx, cmd.UserID); err != nil {
			return err
		}

		var err error
		txn, err = s.ledger.Credit(ctx, tx, ledger.Posting{
			UserID:      cmd.UserID,
			Amount:      cmd.Amount,
			Description: ledger.DescriptionWalletTopUp,
		})
		return err
	})
	if err != nil {
		logFailure(logger, "Wallet top-up rejected", err, "amount", cmd.Amount)
		return nil, err
	}

	logger.Info("Wallet topped up", "amount", cmd.Amount, "balance", txn.BalanceAfter)
	return txn, nil
}
