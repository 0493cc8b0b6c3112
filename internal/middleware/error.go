package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

// ErrorResponse is the error envelope written by middleware.
type ErrorResponse struct {
	Status    string      `json:"status"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrorHandler logs errors attached with c.Error and renders the last one.
// Data set under ContextErrorData is served alongside the message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)

		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Interface("meta", e.Meta).
				Msg("Request error")
		}

		// a handler or inner middleware already answered
		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		status := httputil.StatusCode(lastErr)
		data, _ := c.Get(ContextErrorData)

		c.JSON(status, ErrorResponse{
			Status:    httputil.StatusError,
			Code:      status,
			Message:   httputil.Message(lastErr),
			RequestID: requestID,
			Data:      data,
		})
	}
}

const ContextErrorData = "error_data"

// AbortWithData records err on the context together with the data that
// could still be served, and stops the chain.
func AbortWithData(c *gin.Context, err error, data interface{}) {
	if data != nil {
		c.Set(ContextErrorData, data)
	}
	_ = c.Error(err)
	c.Abort()
}
