package appointment

import (
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// Card is the list rendering of one appointment.
type Card struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	Provider    string `json:"provider,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Time        string `json:"time"`
	Duration    int    `json:"durationMinutes"`
	Description string `json:"description,omitempty"`
}

func NewCard(a *model.Appointment, loc *time.Location, clock24h bool) Card {
	if loc == nil {
		loc = time.Local
	}
	c := Card{
		ID:          a.ID,
		PatientName: a.PatientName(),
		Status:      string(a.Status),
		StatusLabel: a.StatusLabel(),
		Start:       a.Start.In(loc).Format(time.RFC3339),
		End:         a.End.In(loc).Format(time.RFC3339),
		Time:        FormatTime(a.Start, loc, clock24h),
		Duration:    int(a.Duration() / time.Minute),
		Description: a.Description,
	}
	if p := a.Provider(); p != nil {
		c.Provider = p.Display
		c.Specialty = p.Specialty
	}
	return c
}

// DayGroup is the rendering of one Group.
type DayGroup struct {
	Date         string `json:"date"`
	Label        string `json:"label"`
	Appointments []Card `json:"appointments"`
}

// Schedule is the grouped appointments view.
type Schedule struct {
	Total  int        `json:"total"`
	Groups []DayGroup `json:"groups"`
	Stale  bool       `json:"stale,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// BuildSchedule groups items by day and labels each day against now.
func BuildSchedule(items []model.Appointment, now time.Time, loc *time.Location, clock24h bool) *Schedule {
	if loc == nil {
		loc = time.Local
	}
	groups := GroupByDay(items, loc)

	s := &Schedule{Total: len(items), Groups: make([]DayGroup, 0, len(groups))}
	for _, g := range groups {
		dg := DayGroup{
			Date:         g.Key,
			Label:        DayLabel(g.Date, now, loc),
			Appointments: make([]Card, 0, len(g.Appointments)),
		}
		for i := range g.Appointments {
			dg.Appointments = append(dg.Appointments, NewCard(&g.Appointments[i], loc, clock24h))
		}
		s.Groups = append(s.Groups, dg)
	}
	return s
}

// Detail is the full rendering of one appointment with the patient's
// history and allergies.
type Detail struct {
	Card
	DateTime       string   `json:"dateTime"`
	PatientGender  string   `json:"patientGender,omitempty"`
	MedicalHistory []string `json:"medicalHistory"`
	Allergies      []string `json:"allergies"`
}

func NewDetail(a *model.Appointment, loc *time.Location, clock24h bool) Detail {
	if loc == nil {
		loc = time.Local
	}
	d := Detail{
		Card:           NewCard(a, loc, clock24h),
		DateTime:       a.Start.In(loc).Format(DayLabelLayout) + " " + FormatTime(a.Start, loc, clock24h),
		MedicalHistory: []string{},
		Allergies:      []string{},
	}
	if p := a.Patient(); p != nil {
		d.PatientGender = p.Gender
		if p.MedicalHistory != nil {
			d.MedicalHistory = p.MedicalHistory
		}
		if p.Allergies != nil {
			d.Allergies = p.Allergies
		}
	}
	return d
}
