package assessmenthandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/assessment"
	"perfeval/internal/domain/audit"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, actor string, employeeID, periodID int64, in assessment.CreateInput) (assessment.SelfAssessment, error)
	Get(ctx context.Context, id int64) (assessment.SelfAssessment, error)
	Update(ctx context.Context, actor string, id int64, in assessment.UpdateInput) (assessment.SelfAssessment, error)
	Submit(ctx context.Context, actor string, id int64) (assessment.SelfAssessment, error)
	Transition(ctx context.Context, actor string, id int64, target assessment.Status) (assessment.SelfAssessment, error)
	ListForEmployee(ctx context.Context, employeeID int64, periodID *int64) ([]assessment.SelfAssessment, error)
	CompareWithManagerRating(ctx context.Context, id int64) (assessment.Comparison, error)
}

// History lists audit events. It may be nil, in which case the history
// route is not registered.
type History interface {
	Count(ctx context.Context, filter audit.Filter) (int, error)
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service Service
	History History
}

func NewHandler(service Service, history History) *Handler {
	return &Handler{Service: service, History: history}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees/{employeeID}", func(r chi.Router) {
		r.With(middleware.RequireActor).Post("/periods/{periodID}/self-assessments", h.handleCreate)
		r.Get("/self-assessments", h.handleList)
	})
	r.Route("/self-assessments/{assessmentID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.With(middleware.RequireActor).Patch("/", h.handleUpdate)
		r.With(middleware.RequireActor).Post("/submit", h.handleSubmit)
		r.With(middleware.RequireActor).Post("/transition", h.handleTransition)
		r.Get("/comparison", h.handleComparison)
		if h.History != nil {
			r.Get("/history", h.handleHistory)
		}
	})
}

type createPayload struct {
	Dimension    string               `json:"dimension" validate:"required,max=100"`
	Responses    assessment.Responses `json:"responses" validate:"required,min=1"`
	OverallScore *float64             `json:"overallScore"`
}

type updatePayload struct {
	Dimension *string              `json:"dimension" validate:"omitempty,max=100"`
	Responses assessment.Responses `json:"responses"`
	Status    *assessment.Status   `json:"status"`
}

type transitionPayload struct {
	Status string `json:"status" validate:"required,oneof=draft submitted approved archived"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	v := shared.NewValidator()
	employeeID := shared.PathID(r, "employeeID", v)
	periodID := shared.PathID(r, "periodID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	var payload createPayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), actor, employeeID, periodID, assessment.CreateInput{
		Dimension:    payload.Dimension,
		Responses:    payload.Responses,
		OverallScore: payload.OverallScore,
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	employeeID := shared.PathID(r, "employeeID", v)
	periodID := shared.QueryID(r, "periodId", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	items, err := h.Service.ListForEmployee(r.Context(), employeeID, periodID)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, len(items))
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	var payload updatePayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.Update(r.Context(), actor, id, assessment.UpdateInput{
		Dimension: payload.Dimension,
		Responses: payload.Responses,
		Status:    payload.Status,
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	submitted, err := h.Service.Submit(r.Context(), actor, id)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, submitted, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	var payload transitionPayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.Transition(r.Context(), actor, id, assessment.Status(payload.Status))
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	result, err := h.Service.CompareWithManagerRating(r.Context(), id)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "assessmentID", v)
	page := shared.ParsePage(r, shared.HistoryPage, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if _, err := h.Service.Get(r.Context(), id); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	filter := audit.Filter{EntityType: assessment.EntitySelfAssessment, EntityID: strconv.FormatInt(id, 10)}
	total, err := h.History.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "history_failed", "failed to load history", middleware.GetRequestID(r.Context()))
		return
	}
	events, err := h.History.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusBadGateway, "history_failed", "failed to load history", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
