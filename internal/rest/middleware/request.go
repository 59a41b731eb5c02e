package middleware

import (
	"github.com/flexprice/paycycle/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDMiddleware propagates X-Request-ID, minting one when the caller sent none
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// SystemUserMiddleware attributes writes made by scheduler-triggered routes to the system user
func SystemUserMiddleware(c *gin.Context) {
	ctx := types.SetUserID(c.Request.Context(), types.SystemUserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
