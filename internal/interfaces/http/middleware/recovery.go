package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsmarts/internal/interfaces/http/handlers"
	"github.com/turtacn/molsmarts/pkg/errors"
)

// Recovery turns a panicking handler into a 500 in the error envelope.  A
// client that went away (http.ErrAbortHandler) is re-panicked so net/http
// drops the connection quietly.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Error("panic recovered",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("path", c.Request.URL.Path),
				logging.String(logging.FieldRequestID, c.GetString(handlers.RequestIDKey)),
				logging.String("stack", string(debug.Stack())),
			)
			handlers.RespondError(c, errors.Internal("internal server error"))
		}()
		c.Next()
	}
}

//Personal.AI order the ending
