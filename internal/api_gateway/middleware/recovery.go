package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rental-marketplace-core/internal/platform/metrics"
)

// Recovery turns a handler panic into a 500 in the standard error envelope. A panic unwinds past
// the access log and metrics middleware, so the request is logged and counted here instead.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			correlationID := GetCorrelationID(c)
			attrs := []any{
				"error", r,
				"stack", string(debug.Stack()),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"route", routeLabel(c),
				"correlation_id", correlationID,
			}
			if actorID, ok := GetActorID(c); ok {
				attrs = append(attrs, "actor_id", actorID.String())
			}
			logger.Error("Panic recovered", attrs...)

			response := gin.H{
				"error": gin.H{
					"code":    "INTERNAL_SERVER_ERROR",
					"message": "An internal server error occurred",
				},
			}
			if correlationID != "" {
				response["correlation_id"] = correlationID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response)

			metrics.ObserveHTTPRequest(c.Request.Method, routeLabel(c), http.StatusInternalServerError, time.Since(start))
		}()

		c.Next()
	}
}
