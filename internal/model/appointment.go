package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusProposed  AppointmentStatus = "proposed"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusArrived   AppointmentStatus = "arrived"
	AppointmentStatusFulfilled AppointmentStatus = "fulfilled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "noshow"
)

// Participant type codes.
const (
	ParticipantPatient   = "PART"
	ParticipantPerformer = "PPRF"
)

const DefaultAppointmentDuration = 30 * time.Minute

var statusLabels = map[AppointmentStatus]string{
	AppointmentStatusBooked:    "Booked",
	AppointmentStatusCancelled: "Cancelled",
	AppointmentStatusPending:   "Pending",
	AppointmentStatusFulfilled: "Completed",
	AppointmentStatusArrived:   "Arrived",
	AppointmentStatusNoShow:    "No Show",
	AppointmentStatusProposed:  "Proposed",
}

// Label is the dashboard badge text. Unknown statuses render as Pending.
func (s AppointmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[AppointmentStatusPending]
}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

type Participant struct {
	Type           string   `json:"type"`
	Reference      string   `json:"reference,omitempty"`
	Display        string   `json:"display,omitempty"`
	Status         string   `json:"status,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Specialty      string   `json:"specialty,omitempty"`
	MedicalHistory []string `json:"medicalHistory,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
}

// Appointment is the canonical scheduled encounter. Both upstream shapes
// are decoded into it by the FHIR repository.
type Appointment struct {
	ID              string            `json:"id"`
	Status          AppointmentStatus `json:"status"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	MinutesDuration int               `json:"minutesDuration,omitempty"`
	Description     string            `json:"description,omitempty"`
	Participants    []Participant     `json:"participants"`
}

func (a *Appointment) Duration() time.Duration {
	if a.MinutesDuration > 0 {
		return time.Duration(a.MinutesDuration) * time.Minute
	}
	return DefaultAppointmentDuration
}

func (a *Appointment) participant(kind string) *Participant {
	for i := range a.Participants {
		if a.Participants[i].Type == kind {
			return &a.Participants[i]
		}
	}
	return nil
}

// Patient returns the subject participant, or nil.
func (a *Appointment) Patient() *Participant {
	return a.participant(ParticipantPatient)
}

// Provider returns the primary performer, or nil.
func (a *Appointment) Provider() *Participant {
	return a.participant(ParticipantPerformer)
}

func (a *Appointment) PatientName() string {
	if p := a.Patient(); p != nil && p.Display != "" {
		return p.Display
	}
	return "Unknown Patient"
}

func (a *Appointment) StatusLabel() string {
	return a.Status.Label()
}
