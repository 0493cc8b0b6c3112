package dashboard

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	RecentActivityLimit = 5

	lastSummaryKey = "dashboard:last"
)

// Demo figures shown when no data has ever been fetched.
const (
	DemoTotalPatients         = 1247
	DemoTodayAppointments     = 23
	DemoCompletedAppointments = 156
)

type PatientLister interface {
	List(ctx context.Context, params *model.PatientSearchParams) (*patient.Result, error)
}

type AppointmentLister interface {
	All(ctx context.Context) ([]model.Appointment, string, error)
}

type Activity struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	PatientName string    `json:"patientName"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"statusLabel"`
	Timestamp   time.Time `json:"timestamp"`
	Relative    string    `json:"relative"`
}

type Summary struct {
	TotalPatients         int                `json:"totalPatients"`
	ActivePatients        int                `json:"activePatients"`
	TodayAppointments     int                `json:"todayAppointments"`
	UpcomingToday         int                `json:"upcomingToday"`
	CompletedToday        int                `json:"completedToday"`
	CompletedAppointments int                `json:"completedAppointments"`
	TodaySchedule         []appointment.Card `json:"todaySchedule"`
	RecentActivity        []Activity         `json:"recentActivity"`
	GeneratedAt           time.Time          `json:"generatedAt"`
	Degraded              bool               `json:"degraded,omitempty"`
	Errors                []string           `json:"errors,omitempty"`
}

type Options struct {
	Location *time.Location
	Clock24h bool
	Now      func() time.Time
}

type Service struct {
	patients     PatientLister
	appointments AppointmentLister
	last         *gocache.Cache
	loc          *time.Location
	clock24h     bool
	now          func() time.Time
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewService(patients PatientLister, appointments AppointmentLister, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		patients:     patients,
		appointments: appointments,
		last:         gocache.New(gocache.NoExpiration, 0),
		loc:          opts.Location,
		clock24h:     opts.Clock24h,
		now:          opts.Now,
		metrics:      m,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
	}
}

// Summary assembles the home dashboard. A failing source never fails the
// whole summary: its figures come from the last good summary, or from the
// demo defaults, and its described error is listed in Errors.
func (s *Service) Summary(ctx context.Context) *Summary {
	now := s.now()
	prev := s.lastSummary()

	sum := &Summary{
		TodaySchedule:  []appointment.Card{},
		RecentActivity: []Activity{},
		GeneratedAt:    now,
	}

	patientsOK := s.fillPatients(ctx, sum)
	appointmentsOK := s.fillAppointments(ctx, sum, now)

	if !patientsOK {
		if prev != nil {
			sum.TotalPatients = prev.TotalPatients
			sum.ActivePatients = prev.ActivePatients
		} else {
			sum.TotalPatients = DemoTotalPatients
		}
	}
	if !appointmentsOK {
		if prev != nil {
			sum.TodayAppointments = prev.TodayAppointments
			sum.UpcomingToday = prev.UpcomingToday
			sum.CompletedToday = prev.CompletedToday
			sum.CompletedAppointments = prev.CompletedAppointments
			sum.TodaySchedule = prev.TodaySchedule
			sum.RecentActivity = prev.RecentActivity
		} else {
			sum.TodayAppointments = DemoTodayAppointments
			sum.CompletedAppointments = DemoCompletedAppointments
		}
	}

	sum.Degraded = len(sum.Errors) > 0
	if sum.Degraded {
		s.metrics.DegradedResponses.WithLabelValues("dashboard").Inc()
	}
	if patientsOK && appointmentsOK {
		s.last.SetDefault(lastSummaryKey, *sum)
	}
	return sum
}

func (s *Service) lastSummary() *Summary {
	if v, ok := s.last.Get(lastSummaryKey); ok {
		sum := v.(Summary)
		return &sum
	}
	return nil
}

func (s *Service) fillPatients(ctx context.Context, sum *Summary) bool {
	res, err := s.patients.List(ctx, nil)
	if err != nil {
		msg := fhir.Describe(err)
		if res != nil && res.Error != "" {
			msg = res.Error
		}
		sum.Errors = append(sum.Errors, msg)
		s.logger.Error().Err(err).Msg("dashboard patient counts unavailable")
		if res == nil || !res.Stale {
			return false
		}
	}

	sum.TotalPatients = res.Total
	for i := range res.Patients {
		if res.Patients[i].IsActive() {
			sum.ActivePatients++
		}
	}
	return true
}

func (s *Service) fillAppointments(ctx context.Context, sum *Summary, now time.Time) bool {
	items, msg, err := s.appointments.All(ctx)
	if err != nil {
		if msg == "" {
			msg = fhir.Describe(err)
		}
		sum.Errors = append(sum.Errors, msg)
		s.logger.Error().Err(err).Msg("dashboard appointment counts unavailable")
		if len(items) == 0 {
			return false
		}
	}

	today := make([]model.Appointment, 0)
	for _, a := range items {
		if a.Status == model.AppointmentStatusFulfilled {
			sum.CompletedAppointments++
		}
		if !appointment.SameDay(a.Start, now, s.loc) {
			continue
		}
		today = append(today, a)
		switch {
		case a.Status == model.AppointmentStatusFulfilled:
			sum.CompletedToday++
		case a.Status != model.AppointmentStatusCancelled && a.Start.After(now):
			sum.UpcomingToday++
		}
	}
	sum.TodayAppointments = len(today)

	sort.SliceStable(today, func(i, j int) bool { return today[i].Start.Before(today[j].Start) })
	for i := range today {
		sum.TodaySchedule = append(sum.TodaySchedule, appointment.NewCard(&today[i], s.loc, s.clock24h))
	}

	sum.RecentActivity = RecentActivity(items, now, RecentActivityLimit)
	return true
}

// RecentActivity returns the limit most recent appointments that started
// at or before now, newest first.
func RecentActivity(items []model.Appointment, now time.Time, limit int) []Activity {
	past := make([]model.Appointment, 0, len(items))
	for _, a := range items {
		if !a.Start.After(now) {
			past = append(past, a)
		}
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Start.After(past[j].Start) })
	if len(past) > limit {
		past = past[:limit]
	}

	out := make([]Activity, 0, len(past))
	for i := range past {
		a := &past[i]
		out = append(out, Activity{
			ID:          a.ID,
			Action:      actionFor(a.Status),
			PatientName: a.PatientName(),
			Status:      string(a.Status),
			StatusLabel: a.StatusLabel(),
			Timestamp:   a.Start,
			Relative:    RelativeTime(a.Start, now),
		})
	}
	return out
}

func actionFor(status model.AppointmentStatus) string {
	switch status {
	case model.AppointmentStatusFulfilled:
		return "Appointment completed"
	case model.AppointmentStatusCancelled:
		return "Appointment cancelled"
	case model.AppointmentStatusNoShow:
		return "Patient did not attend"
	case model.AppointmentStatusArrived:
		return "Patient arrived"
	default:
		return "Appointment scheduled"
	}
}
