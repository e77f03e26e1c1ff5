// Package handlers implements the gin handlers of the molsmarts HTTP API.
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsmarts/pkg/errors"
	"github.com/turtacn/molsmarts/pkg/types/common"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

const (
	defaultPageLimit = 20
	maxPageLimit     = 500
)

// parsePagination extracts limit and offset from the query string.  Invalid
// values fall back to the defaults.
func parsePagination(c *gin.Context) (int, int) {
	limit := defaultPageLimit
	offset := 0

	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if v := c.Query("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

func requestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// respond writes data in the standard envelope.
func respond[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = requestID(c)
	c.JSON(status, resp)
}

// RespondError maps err to its HTTP status and writes the error envelope.
// Errors that carry no application code are reported as internal errors
// without their text.
func RespondError(c *gin.Context, err error) {
	var resp common.APIResponse[any]
	status := http.StatusInternalServerError

	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		status = errors.HTTPStatusForCode(ae.Code)
		resp = common.NewErrorResponse(ae.Code.String(), ae.Message, ae.Detail)
	} else {
		resp = common.NewErrorResponse(errors.ErrCodeInternal.String(), errors.DefaultMessageForCode(errors.ErrCodeInternal), "")
	}
	resp.RequestID = requestID(c)
	c.AbortWithStatusJSON(status, resp)
}

// notFound is the NoRoute handler.
func notFound(c *gin.Context) {
	RespondError(c, errors.NotFound("route "+c.Request.Method+" "+c.Request.URL.Path+" not found"))
}

// NotFound returns the handler used for unknown routes.
func NotFound() gin.HandlerFunc { return notFound }

// MethodNotAllowed returns the handler used for known paths with an
// unsupported method.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := common.NewErrorResponse(errors.ErrCodeBadRequest.String(), "method not allowed", c.Request.Method)
		resp.RequestID = requestID(c)
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, resp)
	}
}

//Personal.AI order the ending
