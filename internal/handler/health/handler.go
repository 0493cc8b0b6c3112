package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
)

const readyTimeout = 3 * time.Second

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	upstream Pinger
	logger   zerolog.Logger
}

func NewHandler(upstream Pinger, logger zerolog.Logger) *Handler {
	return &Handler{
		upstream: upstream,
		logger:   logger.With().Str("component", "health_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// ReadinessCheck reports DOWN while the FHIR server is unreachable.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.upstream.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("FHIR server not ready")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": fhir.Describe(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
