package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// widgetError is the body of a request turned away before its event stream
// starts.
type widgetError struct {
	Error string `json:"error"`
}

// rejectRequest ends a widget request that never reached the widget. Server
// faults are logged with their cause; client faults only at debug level.
func rejectRequest(c *gin.Context, logger *zap.Logger, status int, userMessage string, cause error) {
	fields := []zap.Field{
		zap.String("route", c.FullPath()),
		zap.Int("status", status),
	}
	if id, ok := c.Get("sessionID"); ok {
		fields = append(fields, zap.String("session_id", id.(uuid.UUID).String()))
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Widget request failed", fields...)
	} else {
		logger.Debug("Widget request rejected", fields...)
	}
	c.AbortWithStatusJSON(status, widgetError{Error: userMessage})
}
