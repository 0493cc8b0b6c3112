package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

const InvalidRequestMessage = "Invalid request. Please check your input."

// UpstreamError keeps a FHIR request error as is, so its status and
// described message reach the client. Anything else from the upstream path
// becomes a 502 with the described message.
func UpstreamError(err error) error {
	var reqErr *fhir.RequestError
	if errors.As(err, &reqErr) {
		return err
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Upstream(fhir.Describe(err), err)
}

// Fail hands err to the error middleware together with any data that can
// still be served.
func Fail(c *gin.Context, err error, data interface{}) {
	middleware.AbortWithData(c, UpstreamError(err), data)
}

// BindError hands a query binding failure to the validation middleware.
// Failures before validation, such as an unparsable boolean, become a
// plain bad request.
func BindError(c *gin.Context, err error) {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		err = apperrors.BadRequest(InvalidRequestMessage, err)
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.Abort()
}

// NotFound answers 404 for a resource missing from a fetched collection.
func NotFound(c *gin.Context, resource string, err error) {
	middleware.AbortWithData(c, apperrors.NotFound(resource, err), nil)
}
