package fhir

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// RequestError is returned for any upstream failure. Status is 0 when the
// request never produced a response.
type RequestError struct {
	Method  string
	URL     string
	Status  int
	Outcome *model.OperationOutcome
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode is the HTTP status the served API answers with.
func (e *RequestError) StatusCode() int {
	switch e.Status {
	case http.StatusNotFound:
		return http.StatusNotFound
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// UserMessage is the described error for API responses.
func (e *RequestError) UserMessage() string {
	return Describe(e)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound
}

// Describe turns any client error into the message shown to users. A
// structured OperationOutcome body wins over the status table.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return "Network error occurred."
	}

	if o := reqErr.Outcome; o != nil && len(o.Issue) > 0 {
		issue := o.Issue[0]
		if issue.Details != nil && issue.Details.Text != "" {
			return issue.Details.Text
		}
		if issue.Diagnostics != "" {
			return issue.Diagnostics
		}
		return "An error occurred"
	}

	switch {
	case reqErr.Status == http.StatusBadRequest:
		return "Invalid request. Please check your input."
	case reqErr.Status == http.StatusUnauthorized:
		return "Authentication required."
	case reqErr.Status == http.StatusForbidden:
		return "Access denied."
	case reqErr.Status == http.StatusNotFound:
		return "Resource not found."
	case reqErr.Status == http.StatusTooManyRequests:
		return "Too many requests. Please try again later."
	case reqErr.Status >= http.StatusInternalServerError:
		return "Server error. Please try again."
	}

	if reqErr.Err != nil && reqErr.Err.Error() != "" {
		return reqErr.Err.Error()
	}
	return "Network error occurred."
}
