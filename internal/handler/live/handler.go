package live

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/search"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
	"github.com/jwalitptl/clinic-dashboard/internal/service/view"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

type Options struct {
	Debounce       time.Duration
	Remote         bool
	AllowedOrigins []string
	// Clock drives the debounce timers. Defaults to the wall clock.
	Clock search.Clock
}

// Handler serves live patient search over a WebSocket.
type Handler struct {
	service  patient.PatientService
	opts     Options
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewHandler(service patient.PatientService, opts Options, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	if opts.Debounce <= 0 {
		opts.Debounce = search.PatientViewDebounce
	}
	if opts.Clock == nil {
		opts.Clock = search.RealClock()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	h := &Handler{
		service: service,
		opts:    opts,
		metrics: m,
		logger:  logger.With().Str("component", "live_search").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients/live", h.Connect)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Connect upgrades the request and runs the session until the socket
// closes. The first frames are the empty filter state and the full list.
func (h *Handler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already answered
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// the session outlives the request timeout
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))

	s := &session{
		id:      uuid.NewString(),
		conn:    conn,
		svc:     h.service,
		remote:  h.opts.Remote,
		state:   view.New[Results](h.metrics.StaleResultsDrops),
		ctx:     ctx,
		cancel:  cancel,
		send:    make(chan Frame, sendBuffer),
		metrics: h.metrics,
	}
	s.logger = h.logger.With().Str("session", s.id).Logger()
	s.panel = search.NewPanel(s.search, s.clear,
		search.WithDebounce(h.opts.Debounce),
		search.WithClock(h.opts.Clock),
		search.WithLogger(s.logger),
	)

	h.metrics.SearchSessions.Inc()
	defer h.metrics.SearchSessions.Dec()
	s.logger.Info().Msg("live search session started")

	done := make(chan struct{})
	go s.writePump(done)

	s.emitState()
	s.clear()

	s.readPump()

	s.shutdown()
	<-done
	s.logger.Info().Msg("live search session ended")
}
