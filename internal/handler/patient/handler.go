package patient

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/handler"
	"github.com/jwalitptl/clinic-dashboard/internal/search"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

// ListQuery is the query string of GET /patients. "all" leaves gender and
// active unfiltered.
type ListQuery struct {
	Name       string `form:"name" binding:"max=200"`
	Identifier string `form:"identifier" binding:"max=200"`
	BirthDate  string `form:"birthdate" binding:"omitempty,fhirdate"`
	Gender     string `form:"gender" binding:"omitempty,oneof=male female other unknown all"`
	Active     string `form:"active" binding:"omitempty,oneof=true false all"`
	Remote     *bool  `form:"remote"`
}

// Filters converts the query into panel filters.
func (q ListQuery) Filters() search.Filters {
	return search.Filters{
		Name:       strings.TrimSpace(q.Name),
		Identifier: strings.TrimSpace(q.Identifier),
		BirthDate:  q.BirthDate,
		Gender:     q.Gender,
		Active:     q.Active,
	}
}

type ListResponse struct {
	Total         int                   `json:"total"`
	Patients      []patient.Card        `json:"patients"`
	ActiveFilters []search.ActiveFilter `json:"activeFilters"`
	Stale         bool                  `json:"stale,omitempty"`
}

type Handler struct {
	service patient.PatientService
	remote  bool
	logger  zerolog.Logger
}

// NewHandler serves the patients view. remote is the default search mode
// when the query does not pick one.
func NewHandler(service patient.PatientService, remote bool, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		remote:  remote,
		logger:  logger.With().Str("component", "patient_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.BindError(c, err)
		return
	}

	filters := q.Filters()
	params, _ := filters.Params()
	remote := h.remote
	if q.Remote != nil {
		remote = *q.Remote
	}

	res, err := h.service.Search(c.Request.Context(), &params, remote)

	resp := ListResponse{
		Total:         res.Total,
		Patients:      patient.Cards(res.Patients),
		ActiveFilters: filters.Effective(),
		Stale:         res.Stale,
	}
	if err != nil {
		handler.Fail(c, err, resp)
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err, nil)
		return
	}

	httputil.RespondWithSuccess(c, patient.NewDetail(p))
}
