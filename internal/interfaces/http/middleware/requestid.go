package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID reuses a client supplied X-Request-ID or generates one.  The id
// is stored on the gin context and on the request context, where published
// job events pick it up as their trace id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), common.ContextKeyRequestID, id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

//Personal.AI order the ending
