package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID tags every request with a correlation id and echoes it back in
// the response. A caller-supplied id is honored only when it is a valid
// UUID; anything else is replaced so log fields stay well-formed.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// RequestIDFrom returns the request's correlation id, or "" outside the
// RequestID middleware.
func RequestIDFrom(c *gin.Context) string {
	if id, exists := c.Get(requestIDKey); exists {
		return id.(string)
	}
	return ""
}
