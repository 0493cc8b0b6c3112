package fhir

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"bad request", &RequestError{Status: http.StatusBadRequest}, "Invalid request. Please check your input."},
		{"unauthorized", &RequestError{Status: http.StatusUnauthorized}, "Authentication required."},
		{"forbidden", &RequestError{Status: http.StatusForbidden}, "Access denied."},
		{"not found", &RequestError{Status: http.StatusNotFound}, "Resource not found."},
		{"rate limited", &RequestError{Status: http.StatusTooManyRequests}, "Too many requests. Please try again later."},
		{"server error", &RequestError{Status: http.StatusInternalServerError}, "Server error. Please try again."},
		{"bad gateway", &RequestError{Status: http.StatusBadGateway}, "Server error. Please try again."},
		{"transport", &RequestError{Err: errors.New("dial tcp: connection refused")}, "dial tcp: connection refused"},
		{"other status", &RequestError{Status: http.StatusTeapot, Err: errors.New("Request failed with status code 418")}, "Request failed with status code 418"},
		{"empty", &RequestError{}, "Network error occurred."},
		{
			name: "outcome details win over status",
			err: &RequestError{Status: http.StatusBadRequest, Outcome: &model.OperationOutcome{
				ResourceType: "OperationOutcome",
				Issue:        []model.OutcomeIssue{{Severity: "error", Code: "invalid", Details: &model.CodeableConcept{Text: "bad MRN"}}},
			}},
			want: "bad MRN",
		},
		{
			name: "outcome diagnostics",
			err: &RequestError{Status: http.StatusInternalServerError, Outcome: &model.OperationOutcome{
				Issue: []model.OutcomeIssue{{Diagnostics: "db timeout"}}},
			},
			want: "db timeout",
		},
		{
			name: "outcome without text",
			err: &RequestError{Status: http.StatusNotFound, Outcome: &model.OperationOutcome{
				Issue: []model.OutcomeIssue{{Severity: "error"}}},
			},
			want: "An error occurred",
		},
		{
			name: "outcome without issues falls back to status",
			err:  &RequestError{Status: http.StatusNotFound, Outcome: &model.OperationOutcome{}},
			want: "Resource not found.",
		},
		{"wrapped", fmt.Errorf("failed to list: %w", &RequestError{Status: http.StatusNotFound}), "Resource not found."},
		{"plain error", errors.New("decode failed"), "decode failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestRequestErrorStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, (&RequestError{Status: 404}).StatusCode())
	assert.Equal(t, http.StatusTooManyRequests, (&RequestError{Status: 429}).StatusCode())
	assert.Equal(t, http.StatusBadGateway, (&RequestError{Status: 500}).StatusCode())
	assert.Equal(t, http.StatusBadGateway, (&RequestError{}).StatusCode())
	assert.Equal(t, http.StatusBadGateway, (&RequestError{Status: 400}).StatusCode())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", &RequestError{Status: 404})))
	assert.False(t, IsNotFound(&RequestError{Status: 500}))
	assert.False(t, IsNotFound(errors.New("x")))
}
