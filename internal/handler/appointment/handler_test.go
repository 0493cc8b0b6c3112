package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
)

type fakeRepo struct {
	items []model.Appointment
	err   error
}

func (r *fakeRepo) ListAppointments(context.Context) ([]model.Appointment, error) {
	return r.items, r.err
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var now = time.Date(2025, 9, 20, 8, 0, 0, 0, time.UTC)

func fixtures() []model.Appointment {
	mk := func(id, name string, status model.AppointmentStatus, start time.Time) model.Appointment {
		return model.Appointment{
			ID:     id,
			Status: status,
			Start:  start,
			End:    start.Add(45 * time.Minute),

			MinutesDuration: 45,
			Participants: []model.Participant{
				{Type: model.ParticipantPatient, Display: name, Allergies: []string{"Latex"}},
				{Type: model.ParticipantPerformer, Display: "Dr. Lee"},
			},
		}
	}
	return []model.Appointment{
		mk("1", "John Smith", model.AppointmentStatusBooked, time.Date(2025, 9, 20, 14, 30, 0, 0, time.UTC)),
		mk("2", "Jane Doe", model.AppointmentStatusCancelled, time.Date(2025, 9, 21, 9, 0, 0, 0, time.UTC)),
	}
}

func newRouter(repo *fakeRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := appointment.NewService(repo, appointment.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}, nil, zerolog.Nop())

	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Validation(middleware.DefaultValidationConfig()))
	NewHandler(svc, Options{Location: time.UTC}, zerolog.Nop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(t *testing.T, r *gin.Engine, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestListAppointments(t *testing.T) {
	r := newRouter(&fakeRepo{items: fixtures()})

	code, env := get(t, r, "/api/v1/appointments")
	require.Equal(t, http.StatusOK, code)

	var sched appointment.Schedule
	require.NoError(t, json.Unmarshal(env.Data, &sched))
	assert.Equal(t, 2, sched.Total)
	require.Len(t, sched.Groups, 2)
	assert.Equal(t, "Today", sched.Groups[0].Label)
	assert.Equal(t, "2:30 PM", sched.Groups[0].Appointments[0].Time)
	assert.Equal(t, 45, sched.Groups[0].Appointments[0].Duration)
	assert.Equal(t, "Tomorrow", sched.Groups[1].Label)

	code, env = get(t, r, "/api/v1/appointments?name=JANE&status=cancelled&clock=24h")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &sched))
	assert.Equal(t, 1, sched.Total)
	assert.Equal(t, "09:00", sched.Groups[0].Appointments[0].Time)
}

func TestListAppointmentsValidation(t *testing.T) {
	r := newRouter(&fakeRepo{items: fixtures()})

	code, env := get(t, r, "/api/v1/appointments?status=lost&clock=48h")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
}

func TestListAppointmentsUpstreamFailure(t *testing.T) {
	r := newRouter(&fakeRepo{err: &fhir.RequestError{Status: http.StatusInternalServerError}})

	code, env := get(t, r, "/api/v1/appointments")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Server error. Please try again.", env.Message)

	var sched appointment.Schedule
	require.NoError(t, json.Unmarshal(env.Data, &sched))
	assert.Zero(t, sched.Total)
	assert.Equal(t, "Server error. Please try again.", sched.Error)
}

func TestGetAppointment(t *testing.T) {
	r := newRouter(&fakeRepo{items: fixtures()})

	code, env := get(t, r, "/api/v1/appointments/1?clock=24h")
	require.Equal(t, http.StatusOK, code)

	var d appointment.Detail
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "John Smith", d.PatientName)
	assert.Equal(t, "Dr. Lee", d.Provider)
	assert.Equal(t, "Sep 20, 2025 14:30", d.DateTime)
	assert.Equal(t, []string{"Latex"}, d.Allergies)

	code, env = get(t, r, "/api/v1/appointments/99")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Appointment not found", env.Message)
}
