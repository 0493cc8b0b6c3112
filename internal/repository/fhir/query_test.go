package fhir

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func TestBuildQueryString(t *testing.T) {
	active := true
	tests := []struct {
		name   string
		params *model.PatientSearchParams
		want   string
	}{
		{
			name:   "nil params",
			params: nil,
			want:   "",
		},
		{
			name:   "empty params",
			params: &model.PatientSearchParams{},
			want:   "",
		},
		{
			name:   "name and gender",
			params: &model.PatientSearchParams{Name: "Jo Smith", Gender: "female"},
			want:   "name=Jo%20Smith&gender=female",
		},
		{
			name: "fixed order",
			params: &model.PatientSearchParams{
				Address:    "1 Main St",
				Email:      "a@b.com",
				Phone:      "555 0100",
				Identifier: "MRN-1",
				Gender:     "male",
				BirthDate:  "1980-01-02",
				Name:       "Ann",
			},
			want: "name=Ann&birthdate=1980-01-02&gender=male&identifier=MRN-1&telecom=phone|555%200100&email=a%40b.com&address=1%20Main%20St",
		},
		{
			name:   "unvalidated values pass through encoded",
			params: &model.PatientSearchParams{BirthDate: "not a date", Name: "O'Brien&Co"},
			want:   "name=O'Brien%26Co&birthdate=not%20a%20date",
		},
		{
			name:   "active is not forwarded",
			params: &model.PatientSearchParams{Active: &active},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQueryString(tt.params))
		})
	}
}

func TestBuildQueryStringRoundTrip(t *testing.T) {
	params := &model.PatientSearchParams{
		Name:       "José Ñ",
		BirthDate:  "2001-12-31",
		Gender:     "other",
		Identifier: "a/b?c=d",
		Phone:      "+1 (555) 0100",
		Email:      "x+y@z.org",
		Address:    "Flat 1, 2 High St",
	}

	values, err := url.ParseQuery(BuildQueryString(params))
	require.NoError(t, err)

	assert.Len(t, values, 7)
	assert.Equal(t, params.Name, values.Get("name"))
	assert.Equal(t, params.BirthDate, values.Get("birthdate"))
	assert.Equal(t, params.Gender, values.Get("gender"))
	assert.Equal(t, params.Identifier, values.Get("identifier"))
	assert.Equal(t, "phone|"+params.Phone, values.Get("telecom"))
	assert.Equal(t, params.Email, values.Get("email"))
	assert.Equal(t, params.Address, values.Get("address"))
}

func TestEscapeMatchesURIComponent(t *testing.T) {
	assert.Equal(t, "a%20b", escape("a b"))
	assert.Equal(t, "!'()*", escape("!'()*"))
	assert.Equal(t, "-_.~", escape("-_.~"))
	assert.Equal(t, "%2B%26%3D%2F", escape("+&=/"))
}
