package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
)

// ActivityHandler serves the projected activity feed
type ActivityHandler struct {
	activityService service.ActivityService
	logger          *slog.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(logger *slog.Logger, activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// UserFeed lists the caller's activity, newest first. The feed lags the core by the relay delay.
func (h *ActivityHandler) UserFeed(c *gin.Context) {
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

	entries, total, err := h.activityService.UserActivity(c.Request.Context(), id, params.Page, params.PerPage)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, activityOrEmpty(entries), params.Page, params.PerPage, int(total))
}

// BookingFeed lists the events of one booking to its participants
func (h *ActivityHandler) BookingFeed(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "booking")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, err := h.activityService.BookingActivity(c.Request.Context(), id, actorID, params.Page, params.PerPage)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, activityOrEmpty(entries))
}
