package components

import (
	"log/slog"

	"github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/config"
	"github.com/rental-marketplace-core/internal/domain/booking"
	"github.com/rental-marketplace-core/internal/domain/item"
	"github.com/rental-marketplace-core/internal/domain/ledger"
	"github.com/rental-marketplace-core/internal/domain/outbox"
	"github.com/rental-marketplace-core/internal/domain/user"
)

// CreateServices wires the booking and wallet services with all their components.
func CreateServices(
	db service.TxRunner,
	userRepo user.Repository,
	itemRepo item.Repository,
	bookingRepo booking.Repository,
	transactionRepo ledger.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) (service.BookingService, service.WalletService) {
	events := NewEventRecorder(outboxRepo, logger.With("component", "event_recorder"))
	walletLedger := NewLedger(userRepo, transactionRepo, events, logger.With("component", "ledger"))
	availability := NewAvailabilityChecker(bookingRepo, logger.With("component", "availability"))
	validator := NewRequestValidator(logger.With("component", "validator"))

	bookingService := service.NewBookingService(
		db,
		bookingRepo,
		itemRepo,
		userRepo,
		walletLedger,
		availability,
		events,
		validator,
		cfg.Pricing.PlatformFeeBps,
		logger.With("component", "booking_service"),
	)
	walletService := service.NewWalletService(db, walletLedger, validator, logger.With("component", "wallet_service"))

	logger.Info("Created booking core services", "platform_fee_bps", cfg.Pricing.PlatformFeeBps)
	return bookingService, walletService
}
