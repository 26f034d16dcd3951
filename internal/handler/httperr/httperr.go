// Package httperr renders API errors as {"error": {"code", "message"}, "requestId", "detail"}.
package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes are stable identifiers clients can branch on; messages may change.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnprocessable    = "UNPROCESSABLE"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternal         = "INTERNAL"
	CodeServiceUnhealthy = "UNAVAILABLE"
)

// request id key set by the logging middleware
const requestIDKey = "request_id"

type Body struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Status    int    `json:"-"`
	Error     Body   `json:"error"`
	RequestID string `json:"requestId,omitempty"`
	Detail    any    `json:"detail,omitempty"`
}

func NewResponse(c *gin.Context, status int, code, msg string, detail any) Response {
	if code == "" {
		code = CodeForStatus(status)
	}
	return Response{
		Status:    status,
		Error:     Body{Code: code, Message: msg},
		RequestID: c.GetString(requestIDKey),
		Detail:    detail,
	}
}

// CodeForStatus is the generic code used when a caller names none.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusUnprocessableEntity:
		return CodeUnprocessable
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeServiceUnhealthy
	default:
		return CodeInternal
	}
}

// AbortWithError keeps err on the gin context for the error middleware and
// writes the public response.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	AbortWithCode(c, status, "", err, msg, detail)
}

func AbortWithCode(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: err cannot be nil")
	}

	resp := NewResponse(c, status, code, msg, detail)
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
