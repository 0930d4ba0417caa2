package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newLoggedRouter(buf *bytes.Buffer) *gin.Engine {
	testLogger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Logger(testLogger))
	return router
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequestDetails", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer)
		router.GET("/bookings/:id", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		bookingID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodGet, "/bookings/"+bookingID+"?include=timeline", nil)
		req.Header.Set("User-Agent", "test-agent")
		testCorrelationID := uuid.New().String()
		req.Header.Set(CorrelationIDHeader, testCorrelationID)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"HTTP request"`)
		assert.Contains(t, logOutput, `"method":"GET"`)
		assert.Contains(t, logOutput, `"path":"/bookings/`+bookingID+`?include=timeline"`)
		assert.Contains(t, logOutput, `"route":"/bookings/:id"`)
		assert.Contains(t, logOutput, `"status":200`)
		assert.Contains(t, logOutput, `"latency":`)
		assert.Contains(t, logOutput, `"user_agent":"test-agent"`)
		assert.Contains(t, logOutput, `"correlation_id":"`+testCorrelationID+`"`)
	})

	t.Run("IncludesActor", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer)
		router.POST("/bookings", RequireActor(), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		actorID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodPost, "/bookings", nil)
		req.Header.Set(ActorHeader, actorID)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, logBuffer.String(), `"actor_id":"`+actorID+`"`)
		assert.Contains(t, logBuffer.String(), `"status":201`)
	})

	t.Run("ClientErrorsLogAtWarn", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer)
		router.GET("/items/:id", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		req, _ := http.NewRequest(http.MethodGet, "/items/abc", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, logBuffer.String(), `"level":"WARN"`)
		assert.Contains(t, logBuffer.String(), `"status":404`)
	})

	t.Run("ServerErrorsLogAtError", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newLoggedRouter(&logBuffer)
		router.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusServiceUnavailable)
		})

		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Contains(t, logBuffer.String(), `"level":"ERROR"`)
	})
}
