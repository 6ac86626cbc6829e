package middleware

import (
	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
)

// RequestIDMiddleware tags each request with an id, reusing a well-formed inbound X-Request-ID
// so a verifier run can be correlated with server logs.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		c.Set(constants.RequestIDField, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// validRequestID allows printable ASCII only, so the id is safe to echo into headers and logs
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID gets request ID from context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(constants.RequestIDField); exists {
		if str, ok := id.(string); ok {
			return str
		}
	}
	return ""
}
