package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	freshKey = "appointments:fresh"
	lastKey  = "appointments:last"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("appointment not found")

type AppointmentService interface {
	All(ctx context.Context) ([]model.Appointment, string, error)
	Schedule(ctx context.Context, f model.AppointmentFilter, opts ScheduleOptions) (*Schedule, error)
	Get(ctx context.Context, id string) (*model.Appointment, error)
}

type Options struct {
	CollectionTTL   time.Duration
	CleanupInterval time.Duration
	Location        *time.Location
	Clock24h        bool
	Now             func() time.Time
}

// ScheduleOptions override the service defaults for one rendering.
type ScheduleOptions struct {
	Clock24h *bool
}

type Service struct {
	repo     repository.AppointmentRepository
	cache    *gocache.Cache
	loc      *time.Location
	clock24h bool
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(repo repository.AppointmentRepository, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if opts.CollectionTTL <= 0 {
		opts.CollectionTTL = 30 * time.Second
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
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
		repo:     repo,
		cache:    gocache.New(opts.CollectionTTL, opts.CleanupInterval),
		loc:      opts.Location,
		clock24h: opts.Clock24h,
		now:      opts.Now,
		metrics:  m,
		logger:   logger.With().Str("component", "appointment_service").Logger(),
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// All returns the full collection. When the fetch fails it returns the last
// good collection, the described message and the wrapped error.
func (s *Service) All(ctx context.Context) ([]model.Appointment, string, error) {
	if cached, ok := s.cache.Get(freshKey); ok {
		return cached.([]model.Appointment), "", nil
	}

	items, err := s.repo.ListAppointments(ctx)
	if err != nil {
		s.metrics.DegradedResponses.WithLabelValues("appointments").Inc()
		s.logger.Error().Err(err).Msg("failed to fetch appointments")

		stale := []model.Appointment{}
		if cached, ok := s.cache.Get(lastKey); ok {
			stale = cached.([]model.Appointment)
		}
		return stale, fhir.Describe(err), fmt.Errorf("failed to list appointments: %w", err)
	}

	s.cache.SetDefault(freshKey, items)
	s.cache.Set(lastKey, items, gocache.NoExpiration)
	return items, "", nil
}

// Schedule filters and groups the collection for display. It always
// returns a Schedule; err is set when the data is stale.
func (s *Service) Schedule(ctx context.Context, f model.AppointmentFilter, opts ScheduleOptions) (*Schedule, error) {
	items, msg, err := s.All(ctx)

	clock24h := s.clock24h
	if opts.Clock24h != nil {
		clock24h = *opts.Clock24h
	}

	sched := BuildSchedule(Filter(items, f), s.now(), s.loc, clock24h)
	sched.Error = msg
	sched.Stale = err != nil && len(items) > 0
	return sched, err
}

// Get finds one appointment in the collection.
func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	items, _, err := s.All(ctx)
	for i := range items {
		if items[i].ID == id {
			a := items[i]
			return &a, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// Invalidate drops the fresh snapshot.
func (s *Service) Invalidate() {
	s.cache.Delete(freshKey)
}
