package fhir

import (
	"net/url"
	"strings"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// escape encodes v the way encodeURIComponent does. QueryEscape differs
// only in using '+' for spaces and escaping a few marks.
func escape(v string) string {
	s := url.QueryEscape(v)
	s = strings.ReplaceAll(s, "+", "%20")
	for _, r := range []struct{ from, to string }{
		{"%21", "!"}, {"%27", "'"}, {"%28", "("}, {"%29", ")"}, {"%2A", "*"},
	} {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}

// BuildQueryString renders params as a FHIR search query. Fields are
// emitted in a fixed order and only when non-empty. Values are not
// validated.
func BuildQueryString(params *model.PatientSearchParams) string {
	if params == nil {
		return ""
	}

	parts := make([]string, 0, 7)
	add := func(key, prefix, value string) {
		if value != "" {
			parts = append(parts, key+"="+prefix+escape(value))
		}
	}

	add("name", "", params.Name)
	add("birthdate", "", params.BirthDate)
	add("gender", "", params.Gender)
	add("identifier", "", params.Identifier)
	add("telecom", "phone|", params.Phone)
	add("email", "", params.Email)
	add("address", "", params.Address)

	return strings.Join(parts, "&")
}
