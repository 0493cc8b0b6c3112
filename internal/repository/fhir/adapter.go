package fhir

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// wireAppointment accepts both upstream shapes: the flattened mock shape
// with patient/provider objects, and the FHIR shape with participant[].
type wireAppointment struct {
	ResourceType    string            `json:"resourceType"`
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	Start           string            `json:"start"`
	End             string            `json:"end"`
	MinutesDuration int               `json:"minutesDuration"`
	Description     string            `json:"description"`
	Patient         *mockPatient      `json:"patient"`
	Provider        *mockProvider     `json:"provider"`
	Participant     []wireParticipant `json:"participant"`
}

type mockPatient struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Gender         string   `json:"gender"`
	MedicalHistory []string `json:"medicalHistory"`
	Allergies      []string `json:"allergies"`
}

type mockProvider struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

type wireParticipant struct {
	Type   []model.CodeableConcept `json:"type"`
	Actor  *wireReference          `json:"actor"`
	Status string                  `json:"status"`
}

type wireReference struct {
	Reference string `json:"reference"`
	Display   string `json:"display"`
}

// DecodeAppointment translates one raw appointment resource into the
// canonical model.
func DecodeAppointment(raw json.RawMessage) (model.Appointment, error) {
	var w wireAppointment
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Appointment{}, fmt.Errorf("failed to decode appointment: %w", err)
	}
	return w.canonical()
}

// DecodeAppointmentBundle decodes a bundle of appointments in either shape.
// Entries that cannot be decoded are logged and skipped; only an unreadable
// bundle is an error.
func DecodeAppointmentBundle(body []byte, logger zerolog.Logger) ([]model.Appointment, error) {
	var bundle model.Bundle[json.RawMessage]
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode appointment bundle: %w", err)
	}

	out := make([]model.Appointment, 0, len(bundle.Entry))
	for i, raw := range bundle.Resources() {
		a, err := DecodeAppointment(raw)
		if err != nil {
			logger.Warn().Err(err).Int("entry", i).Msg("skipping undecodable appointment")
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (w *wireAppointment) canonical() (model.Appointment, error) {
	a := model.Appointment{
		ID:              w.ID,
		Status:          model.AppointmentStatus(w.Status),
		MinutesDuration: w.MinutesDuration,
		Description:     w.Description,
		Participants:    []model.Participant{},
	}

	var err error
	if a.Start, err = parseInstant(w.Start); err != nil {
		return model.Appointment{}, fmt.Errorf("appointment %s start: %w", w.ID, err)
	}
	if a.End, err = parseInstant(w.End); err != nil {
		return model.Appointment{}, fmt.Errorf("appointment %s end: %w", w.ID, err)
	}

	if w.Patient != nil {
		a.Participants = append(a.Participants, model.Participant{
			Type:           model.ParticipantPatient,
			Reference:      reference(model.ResourceTypePatient, w.Patient.ID),
			Display:        w.Patient.Name,
			Gender:         w.Patient.Gender,
			MedicalHistory: w.Patient.MedicalHistory,
			Allergies:      w.Patient.Allergies,
		})
	}
	if w.Provider != nil {
		a.Participants = append(a.Participants, model.Participant{
			Type:      model.ParticipantPerformer,
			Reference: reference("Practitioner", w.Provider.ID),
			Display:   w.Provider.Name,
			Specialty: w.Provider.Specialty,
		})
	}

	for _, p := range w.Participant {
		cp := model.Participant{
			Type:   participantType(p),
			Status: p.Status,
		}
		if p.Actor != nil {
			cp.Reference = p.Actor.Reference
			cp.Display = p.Actor.Display
		}
		a.Participants = append(a.Participants, cp)
	}

	return a, nil
}

func participantType(p wireParticipant) string {
	for _, t := range p.Type {
		for _, c := range t.Coding {
			if c.Code != "" {
				return c.Code
			}
		}
	}
	if p.Actor != nil && strings.HasPrefix(p.Actor.Reference, model.ResourceTypePatient+"/") {
		return model.ParticipantPatient
	}
	return ""
}

func reference(resourceType, id string) string {
	if id == "" {
		return ""
	}
	return resourceType + "/" + id
}

// parseInstant accepts FHIR instants and dateTimes. Values without an
// offset are read in the local zone.
func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}
