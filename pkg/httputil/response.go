package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type statusCoder interface {
	StatusCode() int
}

type userMessager interface {
	UserMessage() string
}

// StatusCode returns the HTTP status an error should be served with.
func StatusCode(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// Message returns the user-facing text for err. Errors that are neither an
// AppError nor carry a user message are never echoed.
func Message(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var um userMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "Internal server error"
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// AbortWithError aborts the chain with an error envelope.
func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  StatusError,
		Message: message,
	})
}
