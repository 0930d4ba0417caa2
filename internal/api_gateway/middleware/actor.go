package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ActorHeader identifies the calling user. Authentication happens upstream of this service.
	ActorHeader = "X-User-ID"

	actorKey = "actor_id"
)

// RequireActor rejects requests without a valid X-User-ID header and stores the actor for handlers
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, err := uuid.Parse(c.GetHeader(ActorHeader))
		if err != nil || actorID == uuid.Nil {
			response := gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": ActorHeader + " header with a user id is required",
				},
			}
			if correlationID := GetCorrelationID(c); correlationID != "" {
				response["correlation_id"] = correlationID
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response)
			return
		}

		c.Set(actorKey, actorID)
		c.Next()
	}
}

// GetActorID returns the actor stored by RequireActor
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(actorKey); exists {
		id, ok := v.(uuid.UUID)
		return id, ok
	}
	return uuid.Nil, false
}
