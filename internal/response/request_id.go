package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID
// is stored for envelope metadata.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an ID so responses and log
// lines can be correlated. An inbound X-Request-ID is kept, otherwise a
// fresh UUID is generated. The ID is echoed back in the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
