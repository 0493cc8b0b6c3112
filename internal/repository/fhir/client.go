package fhir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	ContentType    = "application/fhir+json"
	DefaultTimeout = 10 * time.Second
)

// ErrEmptyID is returned for lookups without an id.
var ErrEmptyID = errors.New("empty resource id")

type Config struct {
	BaseURL         string
	AppointmentsURL string
	Timeout         time.Duration
}

// Client is the remote resource client for the FHIR API. It never retries.
type Client struct {
	http            *resty.Client
	appointmentsURL string
	metrics         *metrics.Metrics
	logger          zerolog.Logger
}

func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")

	appointmentsURL := cfg.AppointmentsURL
	if appointmentsURL == "" {
		appointmentsURL = base + "/" + model.ResourceTypeAppointment
	}

	if m == nil {
		m = metrics.NewNop()
	}

	return &Client{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", ContentType).
			SetHeader("Accept", ContentType),
		appointmentsURL: appointmentsURL,
		metrics:         m,
		logger:          logger.With().Str("component", "fhir_client").Logger(),
	}
}

// SearchPatients runs GET {base}/Patient with the rendered search query.
func (c *Client) SearchPatients(ctx context.Context, params *model.PatientSearchParams) (*model.Bundle[model.Patient], error) {
	path := "/" + model.ResourceTypePatient
	if qs := BuildQueryString(params); qs != "" {
		path += "?" + qs
	}

	body, err := c.get(ctx, model.ResourceTypePatient, path)
	if err != nil {
		return nil, err
	}

	var bundle model.Bundle[model.Patient]
	if err := json.Unmarshal(body, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode patient bundle: %w", err)
	}
	return &bundle, nil
}

// GetPatient runs GET {base}/Patient/{id}.
func (c *Client) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	path := "/" + model.ResourceTypePatient + "/" + url.PathEscape(id)

	body, err := c.get(ctx, model.ResourceTypePatient, path)
	if err != nil {
		return nil, err
	}

	var patient model.Patient
	if err := json.Unmarshal(body, &patient); err != nil {
		return nil, fmt.Errorf("failed to decode patient: %w", err)
	}
	return &patient, nil
}

// ListAppointments fetches the full appointment schedule. Filtering happens
// locally, so no query is forwarded.
func (c *Client) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	body, err := c.get(ctx, model.ResourceTypeAppointment, c.appointmentsURL)
	if err != nil {
		return nil, err
	}
	return DecodeAppointmentBundle(body, c.logger)
}

// Ping checks that the FHIR server answers its capability statement.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "metadata", "/metadata")
	return err
}

func (c *Client) get(ctx context.Context, resource, path string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		Get(path)
	c.metrics.UpstreamLatency.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	target := path
	if resp != nil && resp.Request != nil && resp.Request.URL != "" {
		target = resp.Request.URL
	}

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(resource, "error").Inc()
		c.logger.Error().Err(err).
			Str("method", http.MethodGet).
			Str("url", target).
			Msg("FHIR request failed")
		return nil, &RequestError{Method: http.MethodGet, URL: target, Err: err}
	}

	status := resp.StatusCode()
	c.metrics.UpstreamRequests.WithLabelValues(resource, strconv.Itoa(status)).Inc()

	if !resp.IsSuccess() {
		reqErr := &RequestError{
			Method:  http.MethodGet,
			URL:     target,
			Status:  status,
			Outcome: parseOutcome(resp.Body()),
			Err:     fmt.Errorf("Request failed with status code %d", status),
		}
		c.logger.Error().Err(reqErr.Err).
			Str("method", http.MethodGet).
			Str("url", target).
			Int("status", status).
			Msg("FHIR request returned an error status")
		return nil, reqErr
	}

	c.logger.Debug().
		Str("url", target).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("FHIR request completed")

	return resp.Body(), nil
}

func parseOutcome(body []byte) *model.OperationOutcome {
	if len(body) == 0 {
		return nil
	}
	var outcome model.OperationOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil
	}
	if outcome.ResourceType != model.ResourceTypeOperationOutcome {
		return nil
	}
	return &outcome
}
