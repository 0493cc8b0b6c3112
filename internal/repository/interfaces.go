package repository

import (
	"context"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository reads person records from the remote FHIR API
	PatientRepository interface {
		SearchPatients(ctx context.Context, params *model.PatientSearchParams) (*model.Bundle[model.Patient], error)
		GetPatient(ctx context.Context, id string) (*model.Patient, error)
	}

	// AppointmentRepository reads the appointment schedule
	AppointmentRepository interface {
		ListAppointments(ctx context.Context) ([]model.Appointment, error)
	}
)
