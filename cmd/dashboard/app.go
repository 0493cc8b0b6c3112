package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/config"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/service/dashboard"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	loc      *time.Location
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	client       *fhir.Client
	patients     *patient.Service
	appointments *appointment.Service
	dashboard    *dashboard.Service
}

// newApp loads configuration and wires the services. Logs go to logOut.
func newApp(opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.v, opts.configFile)
	if err != nil {
		return nil, err
	}

	if logOut == nil {
		logOut = os.Stdout
	}
	l := logger.New(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: logOut,
	})

	loc, err := cfg.Dashboard.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dashboard timezone: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(cfg.Metrics.Namespace, registry)

	client := fhir.NewClient(fhir.Config{
		BaseURL:         cfg.FHIR.BaseURL,
		AppointmentsURL: cfg.FHIR.AppointmentsEndpoint(),
		Timeout:         cfg.FHIR.Timeout,
	}, m, l)

	patients := patient.NewService(client, patient.Options{
		CollectionTTL:   cfg.Cache.CollectionTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Remote:          cfg.Search.Remote,
	}, m, l)

	appointments := appointment.NewService(client, appointment.Options{
		CollectionTTL:   cfg.Cache.CollectionTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Location:        loc,
		Clock24h:        cfg.Dashboard.Clock24h,
	}, m, l)

	dash := dashboard.NewService(patients, appointments, dashboard.Options{
		Location: loc,
		Clock24h: cfg.Dashboard.Clock24h,
	}, m, l)

	return &app{
		cfg:          cfg,
		logger:       l,
		loc:          loc,
		registry:     registry,
		metrics:      m,
		client:       client,
		patients:     patients,
		appointments: appointments,
		dashboard:    dash,
	}, nil
}
