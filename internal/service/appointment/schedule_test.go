package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

func appt(id, patient string, status model.AppointmentStatus, start time.Time) model.Appointment {
	return model.Appointment{
		ID:     id,
		Status: status,
		Start:  start,
		End:    start.Add(30 * time.Minute),
		Participants: []model.Participant{
			{Type: model.ParticipantPatient, Display: patient},
			{Type: model.ParticipantPerformer, Display: "Dr. Adams", Specialty: "Family Medicine"},
		},
	}
}

func TestGroupByDay(t *testing.T) {
	loc := time.UTC
	items := []model.Appointment{
		appt("c", "Carol", model.AppointmentStatusBooked, time.Date(2025, 9, 21, 9, 0, 0, 0, loc)),
		appt("b", "Bob", model.AppointmentStatusBooked, time.Date(2025, 9, 20, 14, 0, 0, 0, loc)),
		appt("a", "Alice", model.AppointmentStatusBooked, time.Date(2025, 9, 20, 9, 0, 0, 0, loc)),
	}

	groups := GroupByDay(items, loc)
	require.Len(t, groups, 2)

	assert.Equal(t, "2025-09-20", groups[0].Key)
	require.Len(t, groups[0].Appointments, 2)
	assert.Equal(t, "a", groups[0].Appointments[0].ID)
	assert.Equal(t, "b", groups[0].Appointments[1].ID)

	assert.Equal(t, "2025-09-21", groups[1].Key)
	require.Len(t, groups[1].Appointments, 1)
	assert.Equal(t, "c", groups[1].Appointments[0].ID)
}

func TestGroupByDayUsesLocation(t *testing.T) {
	edt := time.FixedZone("EDT", -4*60*60)

	// 02:00 UTC on the 21st is still the 20th at UTC-4
	items := []model.Appointment{appt("late", "Late", model.AppointmentStatusBooked, time.Date(2025, 9, 21, 2, 0, 0, 0, time.UTC))}

	assert.Equal(t, "2025-09-21", GroupByDay(items, time.UTC)[0].Key)
	assert.Equal(t, "2025-09-20", GroupByDay(items, edt)[0].Key)
}

func TestGroupByDayEmpty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil, time.UTC))
}

func TestDayLabel(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 9, 20, 12, 0, 0, 0, loc)

	assert.Equal(t, "Today", DayLabel(time.Date(2025, 9, 20, 0, 0, 0, 0, loc), now, loc))
	assert.Equal(t, "Tomorrow", DayLabel(time.Date(2025, 9, 21, 0, 0, 0, 0, loc), now, loc))
	assert.Equal(t, "Yesterday", DayLabel(time.Date(2025, 9, 19, 0, 0, 0, 0, loc), now, loc))
	assert.Equal(t, "Sep 25, 2025", DayLabel(time.Date(2025, 9, 25, 0, 0, 0, 0, loc), now, loc))
	assert.Equal(t, "Dec 31, 2024", DayLabel(time.Date(2024, 12, 31, 0, 0, 0, 0, loc), now, loc))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 9, 20, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "2:05 PM", FormatTime(ts, time.UTC, false))
	assert.Equal(t, "14:05", FormatTime(ts, time.UTC, true))
	assert.Equal(t, "9:00 AM", FormatTime(time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC), time.UTC, false))
}

func TestFilter(t *testing.T) {
	base := time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC)
	items := []model.Appointment{
		appt("1", "John Smith", model.AppointmentStatusBooked, base),
		appt("2", "Jane Smith", model.AppointmentStatusCancelled, base),
		appt("3", "Bob Stone", model.AppointmentStatusBooked, base),
		{ID: "4", Status: model.AppointmentStatusBooked, Start: base},
	}

	pick := func(f model.AppointmentFilter) []string {
		var out []string
		for _, a := range Filter(items, f) {
			out = append(out, a.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, pick(model.AppointmentFilter{}))
	assert.Equal(t, []string{"1", "2", "3", "4"}, pick(model.AppointmentFilter{Status: "all"}))
	assert.Equal(t, []string{"1", "2"}, pick(model.AppointmentFilter{Name: "SMITH"}))
	assert.Equal(t, []string{"1"}, pick(model.AppointmentFilter{Name: "smith", Status: "booked"}))
	assert.Equal(t, []string{"4"}, pick(model.AppointmentFilter{Name: "unknown"}))
	assert.Nil(t, pick(model.AppointmentFilter{Status: "noshow"}))
}

func TestBuildSchedule(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 9, 20, 8, 0, 0, 0, loc)
	items := []model.Appointment{
		appt("t", "Tom", model.AppointmentStatusBooked, time.Date(2025, 9, 21, 15, 30, 0, 0, loc)),
		appt("a", "Ann", model.AppointmentStatusFulfilled, time.Date(2025, 9, 20, 9, 0, 0, 0, loc)),
	}

	s := BuildSchedule(items, now, loc, false)
	assert.Equal(t, 2, s.Total)
	require.Len(t, s.Groups, 2)

	assert.Equal(t, "Today", s.Groups[0].Label)
	assert.Equal(t, "Completed", s.Groups[0].Appointments[0].StatusLabel)
	assert.Equal(t, "9:00 AM", s.Groups[0].Appointments[0].Time)
	assert.Equal(t, "Dr. Adams", s.Groups[0].Appointments[0].Provider)
	assert.Equal(t, 30, s.Groups[0].Appointments[0].Duration)

	assert.Equal(t, "Tomorrow", s.Groups[1].Label)
	assert.Equal(t, "3:30 PM", s.Groups[1].Appointments[0].Time)

	s24 := BuildSchedule(items, now, loc, true)
	assert.Equal(t, "15:30", s24.Groups[1].Appointments[0].Time)
}

func TestNewDetail(t *testing.T) {
	a := appt("x", "Pat", model.AppointmentStatusArrived, time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC))
	a.Participants[0].MedicalHistory = []string{"Diabetes"}
	a.Participants[0].Gender = "female"

	d := NewDetail(&a, time.UTC, true)
	assert.Equal(t, "Sep 20, 2025 09:00", d.DateTime)
	assert.Equal(t, []string{"Diabetes"}, d.MedicalHistory)
	assert.Equal(t, []string{}, d.Allergies)
	assert.Equal(t, "female", d.PatientGender)
	assert.Equal(t, "Arrived", d.StatusLabel)
}
