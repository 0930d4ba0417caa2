package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/api_gateway/service"
	bookingsvc "github.com/rental-marketplace-core/internal/booking_engine/service"
	"github.com/rental-marketplace-core/internal/domain/booking"
)

// BookingHandler handles HTTP requests for the booking lifecycle
type BookingHandler struct {
	bookingService bookingsvc.BookingService
	queryService   service.BookingQueryService
	logger         *slog.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(logger *slog.Logger, bookingService bookingsvc.BookingService, queryService service.BookingQueryService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		queryService:   queryService,
		logger:         logger,
	}
}

// Create requests a booking of an item by the caller
func (h *BookingHandler) Create(c *gin.Context) {
	borrowerID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	b, err := h.bookingService.Create(c.Request.Context(), bookingsvc.CreateBookingCommand{
		ItemID:     itemID,
		BorrowerID: borrowerID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapBookingToResponse(b))
}

// List returns the caller's bookings as borrower (default) or lender, optionally filtered by status
func (h *BookingHandler) List(c *gin.Context) {
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var params ListBookingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := booking.ListFilter{
		UserID: actorID,
		Role:   booking.Role(params.Role),
		Limit:  params.PerPage,
		Offset: (params.Page - 1) * params.PerPage,
	}
	if params.Status != "" {
		status, err := booking.ParseStatus(params.Status)
		if err != nil {
			RespondDomainError(c, h.logger, err)
			return
		}
		filter.Status = status
	}

	bookings, err := h.queryService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBookingsToResponse(bookings))
}

// GetByID returns a booking with its timeline and messages to one of its participants
func (h *BookingHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "booking")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	b, err := h.queryService.GetBooking(c.Request.Context(), id, actorID)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBookingToResponse(b))
}

// UpdateStatus moves a booking through its lifecycle
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "booking")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	target, err := booking.ParseStatus(req.Status)
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	b, err := h.bookingService.Transition(c.Request.Context(), bookingsvc.TransitionCommand{
		BookingID:    id,
		ActorID:      actorID,
		TargetStatus: target,
		Note:         req.Note,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBookingToResponse(b))
}

// Extend moves the end date of an approved or active rental
func (h *BookingHandler) Extend(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "booking")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req ExtendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	newEnd, err := parseDate("new_end_date", req.NewEndDate)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	b, err := h.bookingService.Extend(c.Request.Context(), bookingsvc.ExtendCommand{
		BookingID:  id,
		ActorID:    actorID,
		NewEndDate: newEnd,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapBookingToResponse(b))
}

// AddMessage appends a note to the booking conversation
func (h *BookingHandler) AddMessage(c *gin.Context) {
	id, ok := parseIDParam(c, h.logger, "id", "booking")
	if !ok {
		return
	}
	actorID, ok := actorFrom(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	msg, err := h.bookingService.AddMessage(c.Request.Context(), bookingsvc.MessageCommand{
		BookingID: id,
		ActorID:   actorID,
		Text:      req.Text,
	})
	if err != nil {
		RespondDomainError(c, h.logger, err)
		return
	}

	RespondWithData(c, http.StatusCreated, msg)
}
