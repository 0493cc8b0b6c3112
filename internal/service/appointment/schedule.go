package appointment

import (
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

const (
	DayKeyLayout   = "2006-01-02"
	DayLabelLayout = "Jan 2, 2006"

	Clock12h = "3:04 PM"
	Clock24h = "15:04"
)

// Filter keeps appointments whose patient name contains f.Name
// (case-insensitive) and whose status equals f.Status unless it is "all".
func Filter(items []model.Appointment, f model.AppointmentFilter) []model.Appointment {
	name := strings.ToLower(f.Name)
	status, byStatus := f.StatusFilter()

	out := make([]model.Appointment, 0, len(items))
	for i := range items {
		a := &items[i]
		if name != "" && !strings.Contains(strings.ToLower(a.PatientName()), name) {
			continue
		}
		if byStatus && a.Status != status {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// Group is one day of the schedule.
type Group struct {
	Key          string
	Date         time.Time
	Appointments []model.Appointment
}

// GroupByDay buckets items by their start date in loc. Groups are sorted
// by key, and entries within a group by start time.
func GroupByDay(items []model.Appointment, loc *time.Location) []Group {
	if loc == nil {
		loc = time.Local
	}

	byKey := make(map[string]*Group)
	for _, a := range items {
		start := a.Start.In(loc)
		key := start.Format(DayKeyLayout)
		g, ok := byKey[key]
		if !ok {
			y, m, d := start.Date()
			g = &Group{Key: key, Date: time.Date(y, m, d, 0, 0, 0, 0, loc)}
			byKey[key] = g
		}
		g.Appointments = append(g.Appointments, a)
	}

	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		sort.SliceStable(g.Appointments, func(i, j int) bool {
			return g.Appointments[i].Start.Before(g.Appointments[j].Start)
		})
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// DayLabel renders Today, Tomorrow or Yesterday relative to now, else
// the full date.
func DayLabel(day, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	d := day.In(loc).Format(DayKeyLayout)
	n := now.In(loc)

	switch d {
	case n.Format(DayKeyLayout):
		return "Today"
	case n.AddDate(0, 0, 1).Format(DayKeyLayout):
		return "Tomorrow"
	case n.AddDate(0, 0, -1).Format(DayKeyLayout):
		return "Yesterday"
	}
	return day.In(loc).Format(DayLabelLayout)
}

// FormatTime renders t as "3:04 PM", or "15:04" on a 24-hour clock.
func FormatTime(t time.Time, loc *time.Location, clock24h bool) string {
	if loc == nil {
		loc = time.Local
	}
	if clock24h {
		return t.In(loc).Format(Clock24h)
	}
	return t.In(loc).Format(Clock12h)
}

// SameDay reports whether a and b fall on the same date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	return a.In(loc).Format(DayKeyLayout) == b.In(loc).Format(DayKeyLayout)
}
