package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/ordenes-pos/internal/logger"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

func Logger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info(c.Request.Context(), "http", "request served",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("dur", time.Since(start)))
	}
}

// Envelope is the response shape shared with the order backend.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg})
}

// FailWith is Fail with a data payload, used for validation details.
func FailWith(c *gin.Context, status int, msg string, data any) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg, Data: data})
}

func NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, "not found")
}
