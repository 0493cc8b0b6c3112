package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	metricshandler "github.com/jwalitptl/clinic-dashboard/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	handlers []Handler
	config   RouterConfig
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	CORSConfig       middleware.CORSConfig

	MetricsEnabled bool
	MetricsPrefix  string
	MetricsPath    string
	// Registry receives the request metrics and is served on MetricsPath.
	Registry *prometheus.Registry
}

// NewRouter builds the engine with the core middleware chain. Handlers are
// mounted under /api/v1 by Setup.
func NewRouter(config RouterConfig, handlers ...Handler) *Router {
	engine := gin.New()

	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	r := &Router{
		engine:   engine,
		handlers: handlers,
		config:   config,
		metrics:  initRouterMetrics(config.MetricsPrefix, config.Registry),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	engine.NoRoute(func(c *gin.Context) {
		httputil.AbortWithError(c, http.StatusNotFound, "Resource not found.")
	})

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	api.Use(
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
	)

	if r.config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		api.Use(rateLimiter.RateLimit())
	}

	api.Use(
		middleware.Timeout(middleware.TimeoutConfig{Duration: r.config.RequestTimeout}),
		middleware.Compress(middleware.DefaultCompressConfig()),
		middleware.Cache(middleware.DefaultCacheConfig()),
	)

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}

	if r.config.MetricsEnabled {
		metricshandler.New(r.config.Registry, r.config.MetricsPath).RegisterRoutes(&r.engine.RouterGroup)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if prefix == "" {
		prefix = "http"
	}
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	reg.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func errorType(status int) string {
	switch {
	case status >= 500:
		return "server"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "client"
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, errorType(c.Writer.Status())).Inc()
		}
	}
}
