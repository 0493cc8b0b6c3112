package dashboard

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/service/dashboard"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

type SummaryService interface {
	Summary(ctx context.Context) *dashboard.Summary
}

type Handler struct {
	service SummaryService
	logger  zerolog.Logger
}

func NewHandler(service SummaryService, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetSummary)
}

// GetSummary always answers 200. A degraded summary lists the described
// upstream errors in its errors field.
func (h *Handler) GetSummary(c *gin.Context) {
	sum := h.service.Summary(c.Request.Context())
	if sum.Degraded {
		h.logger.Warn().Strs("errors", sum.Errors).Msg("serving degraded dashboard")
	}
	httputil.RespondWithSuccess(c, sum)
}
