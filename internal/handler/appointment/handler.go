package appointment

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/handler"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

const clock24h = "24h"

// ListQuery is the query string of GET /appointments.
type ListQuery struct {
	Name   string `form:"name" binding:"max=200"`
	Status string `form:"status" binding:"omitempty,oneof=all proposed pending booked arrived fulfilled cancelled noshow"`
	Clock  string `form:"clock" binding:"omitempty,oneof=12h 24h"`
}

type DetailQuery struct {
	Clock string `form:"clock" binding:"omitempty,oneof=12h 24h"`
}

func clockOption(v string) *bool {
	if v == "" {
		return nil
	}
	on := v == clock24h
	return &on
}

type Options struct {
	Location *time.Location
	Clock24h bool
}

type Handler struct {
	service appointment.AppointmentService
	opts    Options
	logger  zerolog.Logger
}

func NewHandler(service appointment.AppointmentService, opts Options, logger zerolog.Logger) *Handler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Handler{
		service: service,
		opts:    opts,
		logger:  logger.With().Str("component", "appointment_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.BindError(c, err)
		return
	}

	filter := model.AppointmentFilter{
		Name:   strings.TrimSpace(q.Name),
		Status: q.Status,
	}
	sched, err := h.service.Schedule(c.Request.Context(), filter, appointment.ScheduleOptions{
		Clock24h: clockOption(q.Clock),
	})
	if err != nil {
		handler.Fail(c, err, sched)
		return
	}

	httputil.RespondWithSuccess(c, sched)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	var q DetailQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.BindError(c, err)
		return
	}

	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			handler.NotFound(c, "Appointment", err)
			return
		}
		handler.Fail(c, err, nil)
		return
	}

	on := h.opts.Clock24h
	if v := clockOption(q.Clock); v != nil {
		on = *v
	}
	httputil.RespondWithSuccess(c, appointment.NewDetail(a, h.opts.Location, on))
}
