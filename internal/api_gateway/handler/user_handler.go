package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
	bookingsvc "github.com/rental-marketplace-core/internal/booking_engine/service"
)

// UserHandler handles HTTP requests for members and their wallets
type UserHandler struct {
	userService   service.UserService
	walletService bookingsvc.WalletService
	logger        *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService, walletService bookingsvc.WalletService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		walletService: walletService,
		logger:        logger,
	}
}

// Create registers a member with an empty wallet
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.CreateUser(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapUserToResponse(u))
}

// GetByID returns a member with the current wallet balance
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "user")
	if !ok {
		return
	}

	u, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// TopUp credits the caller's own wallet
func (h *UserHandler) TopUp(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "user")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.walletService.TopUp(c.Request.Context(), bookingsvc.TopUpCommand{
		UserID:  id,
		ActorID: actorID,
		Amount:  req.Amount,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Transactions lists the caller's wallet history, newest first
func (h *UserHandler) Transactions(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "user")
	if !ok {
		return
	}
	if !requireSelf(c, id) {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	txns, total, err := h.userService.ListTransactions(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	response := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		response = append(response, mapTransactionToResponse(txn))
	}
	RespondWithPaginatedData(c, http.StatusOK, response, params.Page, params.PerPage, int(total))
}
