package kpihandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/kpi"
	"perfeval/internal/domain/stats"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, actor string, in kpi.CreateInput) (kpi.KPI, error)
	Update(ctx context.Context, actor string, id int64, in kpi.UpdateInput) (kpi.KPI, error)
	Retire(ctx context.Context, actor string, id int64) error
	Get(ctx context.Context, id int64) (kpi.KPI, error)
	List(ctx context.Context, filter kpi.Filter) ([]kpi.KPI, error)
	Categories(ctx context.Context) ([]string, error)
	CalculateScore(ctx context.Context, id int64, target, achieved float64) (kpi.ScoreResult, error)
	Statistics(ctx context.Context, id int64, window stats.Window) (stats.KPIStatistics, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kpis", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireActor).Post("/", h.handleCreate)
		r.Get("/categories", h.handleCategories)
		r.Get("/{kpiID}", h.handleGet)
		r.With(middleware.RequireActor).Patch("/{kpiID}", h.handleUpdate)
		r.With(middleware.RequireActor).Delete("/{kpiID}", h.handleRetire)
		r.Post("/{kpiID}/score", h.handleScore)
		r.Get("/{kpiID}/statistics", h.handleStatistics)
	})
}

type createPayload struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description"`
	Unit         string `json:"unit" validate:"max=64"`
	Category     string `json:"category" validate:"max=128"`
	TargetPolicy string `json:"targetPolicy" validate:"required,oneof=higher_better lower_better target_range"`
}

type updatePayload struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	Unit         *string `json:"unit" validate:"omitempty,max=64"`
	Category     *string `json:"category" validate:"omitempty,max=128"`
	TargetPolicy *string `json:"targetPolicy" validate:"omitempty,oneof=higher_better lower_better target_range"`
}

type scorePayload struct {
	Target   *float64 `json:"target" validate:"required"`
	Achieved *float64 `json:"achieved" validate:"required"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := kpi.Filter{
		Category:       r.URL.Query().Get("category"),
		IncludeRetired: r.URL.Query().Get("includeRetired") == "true",
	}
	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	var payload createPayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Create(r.Context(), actor, kpi.CreateInput{
		Name:         payload.Name,
		Description:  payload.Description,
		Unit:         payload.Unit,
		Category:     payload.Category,
		TargetPolicy: payload.TargetPolicy,
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Categories(r.Context())
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if items == nil {
		items = []string{}
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "kpiID", v)
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
	id := shared.PathID(r, "kpiID", v)
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

	updated, err := h.Service.Update(r.Context(), actor, id, kpi.UpdateInput{
		Name:         payload.Name,
		Description:  payload.Description,
		Unit:         payload.Unit,
		Category:     payload.Category,
		TargetPolicy: payload.TargetPolicy,
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRetire(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	v := shared.NewValidator()
	id := shared.PathID(r, "kpiID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if err := h.Service.Retire(r.Context(), actor, id); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "retired"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "kpiID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	var payload scorePayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.CalculateScore(r.Context(), id, *payload.Target, *payload.Achieved)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "kpiID", v)
	window := shared.ParseWindow(r, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	result, err := h.Service.Statistics(r.Context(), id, window)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
