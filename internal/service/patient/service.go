package patient

import (
	"context"
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
	freshKey = "patients:fresh"
	lastKey  = "patients:last"
)

type PatientService interface {
	List(ctx context.Context, params *model.PatientSearchParams) (*Result, error)
	Search(ctx context.Context, params *model.PatientSearchParams, remote bool) (*Result, error)
	Get(ctx context.Context, id string) (*model.Patient, error)
}

// Result is one rendering of the patient list. Error carries the user
// facing message when the list is served from a stale snapshot.
type Result struct {
	Patients []model.Patient `json:"patients"`
	Total    int             `json:"total"`
	Stale    bool            `json:"stale,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type Options struct {
	CollectionTTL   time.Duration
	CleanupInterval time.Duration
	// Remote forwards non-empty criteria to the FHIR API before the local
	// filter runs.
	Remote bool
}

type Service struct {
	repo    repository.PatientRepository
	cache   *gocache.Cache
	remote  bool
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(repo repository.PatientRepository, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if opts.CollectionTTL <= 0 {
		opts.CollectionTTL = 30 * time.Second
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		repo:    repo,
		cache:   gocache.New(opts.CollectionTTL, opts.CleanupInterval),
		remote:  opts.Remote,
		metrics: m,
		logger:  logger.With().Str("component", "patient_service").Logger(),
	}
}

// List returns the patients matching params. On upstream failure it still
// returns a Result built from the last good collection, together with the
// wrapped error.
func (s *Service) List(ctx context.Context, params *model.PatientSearchParams) (*Result, error) {
	return s.Search(ctx, params, s.remote)
}

// Search is List with the remote mode chosen per call.
func (s *Service) Search(ctx context.Context, params *model.PatientSearchParams, remote bool) (*Result, error) {
	if remote && !params.IsEmpty() {
		bundle, err := s.repo.SearchPatients(ctx, params)
		if err == nil {
			return newResult(Filter(bundle.Resources(), params)), nil
		}
		s.logger.Warn().Err(err).Msg("remote patient search failed, filtering cached collection")
		return s.degraded(params, err)
	}

	patients, err := s.collection(ctx)
	if err != nil {
		return s.degraded(params, err)
	}
	return newResult(Filter(patients, params)), nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// Invalidate drops the fresh snapshot so the next List refetches.
func (s *Service) Invalidate() {
	s.cache.Delete(freshKey)
}

func (s *Service) collection(ctx context.Context) ([]model.Patient, error) {
	if cached, ok := s.cache.Get(freshKey); ok {
		return cached.([]model.Patient), nil
	}

	bundle, err := s.repo.SearchPatients(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch patients: %w", err)
	}

	patients := bundle.Resources()
	s.cache.SetDefault(freshKey, patients)
	s.cache.Set(lastKey, patients, gocache.NoExpiration)

	s.logger.Debug().Int("count", len(patients)).Msg("patient collection refreshed")
	return patients, nil
}

func (s *Service) degraded(params *model.PatientSearchParams, err error) (*Result, error) {
	s.metrics.DegradedResponses.WithLabelValues("patients").Inc()

	res := newResult(nil)
	if cached, ok := s.cache.Get(lastKey); ok {
		res = newResult(Filter(cached.([]model.Patient), params))
		res.Stale = true
	}
	res.Error = fhir.Describe(err)

	s.logger.Error().Err(err).Bool("stale", res.Stale).Msg("serving degraded patient list")
	return res, err
}

func newResult(patients []model.Patient) *Result {
	if patients == nil {
		patients = []model.Patient{}
	}
	return &Result{Patients: patients, Total: len(patients)}
}
