package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/config"
)

const patientBundle = `{
  "resourceType": "Bundle",
  "type": "searchset",
  "entry": [
    {"resource": {"resourceType": "Patient", "id": "1", "active": true, "name": [{"family": "Smith", "given": ["John"]}], "gender": "male", "birthDate": "1980-04-02"}},
    {"resource": {"resourceType": "Patient", "id": "2", "name": [{"family": "Doe", "given": ["Jane"]}], "gender": "female"}}
  ]
}`

const appointmentBundle = `{
  "resourceType": "Bundle",
  "type": "searchset",
  "entry": [{
    "resource": {
      "resourceType": "Appointment",
      "id": "apt-1",
      "status": "booked",
      "start": "2025-09-20T09:00:00Z",
      "end": "2025-09-20T09:30:00Z",
      "patient": {"id": "p1", "name": "John Smith"},
      "provider": {"id": "dr1", "name": "Dr. Adams", "specialty": "Cardiology"}
    }
  }]
}`

func fhirServer(t *testing.T, patientStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fhir/Patient", func(w http.ResponseWriter, r *http.Request) {
		if patientStatus != http.StatusOK {
			w.WriteHeader(patientStatus)
			return
		}
		_, _ = w.Write([]byte(patientBundle))
	})
	mux.HandleFunc("/fhir/Appointment", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(appointmentBundle))
	})
	mux.HandleFunc("/fhir/metadata", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resourceType":"CapabilityStatement"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DASHBOARD_DASHBOARD_TIMEZONE", "UTC")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestPatientsCommand(t *testing.T) {
	srv := fhirServer(t, http.StatusOK)

	out, _, err := run(t, "patients", "--base-url", srv.URL+"/fhir", "--name", "smith")
	require.NoError(t, err)
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "1980-04-02")
	assert.NotContains(t, out, "Jane Doe")
	assert.Contains(t, out, "1 patient(s) matching name=smith")
}

func TestPatientsCommandRejectsInvalidFlags(t *testing.T) {
	_, _, err := run(t, "patients", "--birthdate", "01/02/1990", "--gender", "robot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--birthdate: Must be a date in YYYY-MM-DD format")
	assert.Contains(t, err.Error(), "--gender:")
}

func TestPatientsCommandUpstreamFailure(t *testing.T) {
	srv := fhirServer(t, http.StatusServiceUnavailable)

	_, _, err := run(t, "patients", "--base-url", srv.URL+"/fhir")
	require.Error(t, err)
	assert.Equal(t, "Server error. Please try again.", err.Error())
}

func TestAppointmentsCommand(t *testing.T) {
	srv := fhirServer(t, http.StatusOK)

	out, _, err := run(t, "appointments", "--base-url", srv.URL+"/fhir", "--24h")
	require.NoError(t, err)
	assert.Contains(t, out, "(2025-09-20)")
	assert.Contains(t, out, "09:00")
	assert.Contains(t, out, "John Smith")
	assert.Contains(t, out, "Dr. Adams")
	assert.Contains(t, out, "1 appointment(s)")

	out, _, err = run(t, "appointments", "--base-url", srv.URL+"/fhir", "--status", "cancelled")
	require.NoError(t, err)
	assert.Contains(t, out, "No appointments found.")
}

func TestServeEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := fhirServer(t, http.StatusOK)

	opts := &rootOptions{v: config.New()}
	opts.v.Set("fhir.base_url", srv.URL+"/fhir")
	opts.v.Set("dashboard.timezone", "UTC")

	a, err := newApp(opts, io.Discard)
	require.NoError(t, err)
	engine := newEngine(a)

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready", "/api/v1/patients", "/api/v1/appointments", "/api/v1/dashboard", "/metrics"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
