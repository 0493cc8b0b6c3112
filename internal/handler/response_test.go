package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

func TestUpstreamError(t *testing.T) {
	reqErr := &fhir.RequestError{Status: http.StatusNotFound}
	wrapped := fmt.Errorf("failed to get patient: %w", reqErr)
	assert.Same(t, wrapped, UpstreamError(wrapped))
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(UpstreamError(wrapped)))
	assert.Equal(t, "Resource not found.", httputil.Message(UpstreamError(wrapped)))

	decodeErr := errors.New("failed to decode patient bundle: unexpected EOF")
	err := UpstreamError(decodeErr)
	assert.Equal(t, http.StatusBadGateway, httputil.StatusCode(err))
	assert.Equal(t, decodeErr.Error(), httputil.Message(err))
	assert.ErrorIs(t, err, decodeErr)
}

func TestBindErrorWrapsParseFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, parseErr := strconv.ParseBool("maybe")
	BindError(c, parseErr)

	assert.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	assert.True(t, c.Errors[0].IsType(gin.ErrorTypeBind))
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(c.Errors[0].Err))
	assert.Equal(t, InvalidRequestMessage, httputil.Message(c.Errors[0].Err))
	assert.ErrorIs(t, c.Errors[0].Err, parseErr)
}

func TestNotFoundAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	NotFound(c, "Appointment", errors.New("no such id"))

	assert.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	assert.Equal(t, http.StatusNotFound, httputil.StatusCode(c.Errors[0].Err))
	assert.Equal(t, "Appointment not found", httputil.Message(c.Errors[0].Err))
}
