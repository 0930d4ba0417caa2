package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
)

// ItemHandler handles HTTP requests for listings
type ItemHandler struct {
	itemService service.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(logger *slog.Logger, itemService service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// Create lists a new item owned by the caller
func (h *ItemHandler) Create(c *gin.Context) {
	ownerID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	it, err := h.itemService.CreateItem(c.Request.Context(), service.CreateItemCommand{
		OwnerID:           ownerID,
		Title:             req.Title,
		DailyPrice:        req.DailyPrice,
		ItemValue:         req.ItemValue,
		DepositPercentage: req.DepositPercentage,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapItemToResponse(it))
}

// GetByID returns a listing with its availability flag and stats
func (h *ItemHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "item")
	if !ok {
		return
	}

	it, err := h.itemService.GetItem(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapItemToResponse(it))
}
