package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rental-marketplace-core/internal/api_gateway/middleware"
)

// parseIDParam reads a uuid path parameter and answers 400 when it is malformed
func parseIDParam(c *gin.Context, logger *slog.Logger, name, label string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid "+label+" ID", name, raw, "error", err)
		RespondBadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom returns the caller set by middleware.RequireActor
func actorFrom(c *gin.Context) (uuid.UUID, bool) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", middleware.ActorHeader+" header with a user id is required")
		return uuid.Nil, false
	}
	return actorID, true
}

// requireSelf answers 403 unless the caller is the user named in the path
func requireSelf(c *gin.Context, userID uuid.UUID) bool {
	actorID, ok := actorFrom(c)
	if !ok {
		return false
	}
	if actorID != userID {
		RespondWithError(c, http.StatusForbidden, "FORBIDDEN", "Only the wallet owner may view this resource")
		return false
	}
	return true
}
