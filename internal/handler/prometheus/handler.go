package prometheus

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes a registry for scraping.
type Handler struct {
	gatherer prometheus.Gatherer
	path     string
}

func New(gatherer prometheus.Gatherer, path string) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if path == "" {
		path = "/metrics"
	}
	return &Handler{gatherer: gatherer, path: path}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, h.Handler())
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
