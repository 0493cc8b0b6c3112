package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
)

type fakeService struct {
	res        *patient.Result
	err        error
	lastParams *model.PatientSearchParams
	lastRemote bool
}

func (f *fakeService) List(ctx context.Context, params *model.PatientSearchParams) (*patient.Result, error) {
	return f.Search(ctx, params, false)
}

func (f *fakeService) Search(_ context.Context, params *model.PatientSearchParams, remote bool) (*patient.Result, error) {
	f.lastParams = params
	f.lastRemote = remote
	return f.res, f.err
}

func (f *fakeService) Get(_ context.Context, id string) (*model.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.res.Patients {
		if f.res.Patients[i].ID == id {
			return &f.res.Patients[i], nil
		}
	}
	return nil, &fhir.RequestError{Status: http.StatusNotFound}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(svc patient.PatientService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.Validation(middleware.DefaultValidationConfig()))
	NewHandler(svc, false, zerolog.Nop()).RegisterRoutes(r.Group("/api/v1"))
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

func active(b bool) *bool { return &b }

func fixtures() []model.Patient {
	return []model.Patient{
		{ID: "p1", Name: []model.HumanName{{Family: "Smith", Given: []string{"John"}}}, Gender: "male", Active: active(true)},
		{ID: "p2", Name: []model.HumanName{{Family: "Doe", Given: []string{"Jane"}}}, Gender: "female"},
	}
}

func TestListPatients(t *testing.T) {
	svc := &fakeService{res: &patient.Result{Patients: fixtures(), Total: 2}}
	r := newRouter(svc)

	code, env := get(t, r, "/api/v1/patients?name=%20john%20&gender=male&active=all&remote=true")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	assert.Equal(t, "john", svc.lastParams.Name)
	assert.Equal(t, "male", svc.lastParams.Gender)
	assert.Nil(t, svc.lastParams.Active)
	assert.True(t, svc.lastRemote)

	var data ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Total)
	require.Len(t, data.Patients, 2)
	assert.Equal(t, "John Smith", data.Patients[0].Name)
	assert.Equal(t, "No address on file", data.Patients[1].Address)
	assert.Len(t, data.ActiveFilters, 2)
	assert.Equal(t, "name", data.ActiveFilters[0].Key)
	assert.Equal(t, "gender", data.ActiveFilters[1].Key)
}

func TestListPatientsActiveFilter(t *testing.T) {
	svc := &fakeService{res: &patient.Result{Patients: []model.Patient{}}}
	r := newRouter(svc)

	code, _ := get(t, r, "/api/v1/patients?active=false")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, svc.lastParams.Active)
	assert.False(t, *svc.lastParams.Active)
	assert.False(t, svc.lastRemote)
}

func TestListPatientsValidation(t *testing.T) {
	svc := &fakeService{res: &patient.Result{}}
	r := newRouter(svc)

	code, env := get(t, r, "/api/v1/patients?birthdate=1990-13-40&gender=robot&active=maybe")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Nil(t, svc.lastParams)

	var data struct {
		Errors []middleware.ValidationError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Errors, 3)
	assert.Equal(t, "birthdate", data.Errors[0].Field)
	assert.Equal(t, "gender", data.Errors[1].Field)
	assert.Equal(t, "active", data.Errors[2].Field)
}

func TestListPatientsRejectsUnparsableRemote(t *testing.T) {
	svc := &fakeService{res: &patient.Result{}}
	r := newRouter(svc)

	code, env := get(t, r, "/api/v1/patients?remote=maybe")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Invalid request. Please check your input.", env.Message)
	assert.Nil(t, svc.lastParams)
}

func TestListPatientsDegraded(t *testing.T) {
	svc := &fakeService{
		res: &patient.Result{Patients: fixtures()[:1], Total: 1, Stale: true, Error: "Too many requests. Please try again later."},
		err: &fhir.RequestError{Status: http.StatusTooManyRequests},
	}
	r := newRouter(svc)

	code, env := get(t, r, "/api/v1/patients")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Too many requests. Please try again later.", env.Message)

	var data ListResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Stale)
	assert.Equal(t, 1, data.Total)
}

func TestGetPatient(t *testing.T) {
	p := fixtures()
	p[0].Allergies = []string{"Penicillin"}
	r := newRouter(&fakeService{res: &patient.Result{Patients: p}})

	code, env := get(t, r, "/api/v1/patients/p1")
	require.Equal(t, http.StatusOK, code)

	var detail patient.Detail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "John Smith", detail.Name)
	assert.Equal(t, []string{"Penicillin"}, detail.Allergies)
	assert.Equal(t, []string{}, detail.MedicalHistory)

	code, env = get(t, r, "/api/v1/patients/missing")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Resource not found.", env.Message)
}
