package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rental-marketplace-core/internal/api_gateway/handler"
	"github.com/rental-marketplace-core/internal/api_gateway/middleware"
	"github.com/rental-marketplace-core/internal/config"
)

// handlers groups the HTTP handlers served under /api/v1
type handlers struct {
	users    *handler.UserHandler
	items    *handler.ItemHandler
	bookings *handler.BookingHandler
	activity *handler.ActivityHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, rateLimit config.RateLimitConfig, h handlers) {
	// Correlation id first so recovery and access logs can carry it
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	actor := middleware.RequireActor()

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	v1.Use(middleware.NewRateLimiter(rateLimit.RequestsPerSecond, rateLimit.Burst).Middleware())
	{
		users := v1.Group("/users")
		{
			users.POST("", h.users.Create)
			users.GET("/:id", h.users.GetByID)
			users.POST("/:id/wallet/top-up", actor, h.users.TopUp)
			users.GET("/:id/transactions", actor, h.users.Transactions)
			users.GET("/:id/activity", actor, h.activity.UserFeed)
		}

		items := v1.Group("/items")
		{
			items.POST("", actor, h.items.Create)
			items.GET("/:id", h.items.GetByID)
		}

		// Every booking route acts on behalf of a participant
		bookings := v1.Group("/bookings", actor)
		{
			bookings.POST("", h.bookings.Create)
			bookings.GET("", h.bookings.List)
			bookings.GET("/:id", h.bookings.GetByID)
			bookings.PATCH("/:id/status", h.bookings.UpdateStatus)
			bookings.POST("/:id/extend", h.bookings.Extend)
			bookings.POST("/:id/messages", h.bookings.AddMessage)
			bookings.GET("/:id/activity", h.activity.BookingFeed)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
