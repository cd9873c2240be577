package valueshandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/stats"
	"perfeval/internal/domain/values"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, actor string, in values.CreateInput) (values.CompanyValue, error)
	Update(ctx context.Context, actor string, id int64, in values.UpdateInput) (values.CompanyValue, error)
	Retire(ctx context.Context, actor string, id int64) error
	Get(ctx context.Context, id int64) (values.CompanyValue, error)
	List(ctx context.Context, filter values.Filter) ([]values.CompanyValue, error)
	Reorder(ctx context.Context, actor string, orderedIDs []int64) ([]values.CompanyValue, error)
	CalculateScore(ratings []any) values.ScoreResult
	Statistics(ctx context.Context, id int64, window stats.Window) (stats.ValueStatistics, error)
	Summary(ctx context.Context, window stats.Window) ([]stats.ValueSummary, error)
	SummaryPDF(ctx context.Context, window stats.Window) ([]byte, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/values", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(middleware.RequireActor).Post("/", h.handleCreate)
		r.With(middleware.RequireActor).Put("/order", h.handleReorder)
		r.Post("/score", h.handleScore)
		r.Get("/summary", h.handleSummary)
		r.Get("/summary.pdf", h.handleSummaryPDF)
		r.Get("/{valueID}", h.handleGet)
		r.With(middleware.RequireActor).Patch("/{valueID}", h.handleUpdate)
		r.With(middleware.RequireActor).Delete("/{valueID}", h.handleRetire)
		r.Get("/{valueID}/statistics", h.handleStatistics)
	})
}

type createPayload struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sortOrder" validate:"omitempty,min=1"`
}

type updatePayload struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sortOrder" validate:"omitempty,min=1"`
}

type reorderPayload struct {
	IDs []int64 `json:"ids" validate:"required,min=1,unique,dive,gt=0"`
}

type scorePayload struct {
	Ratings []any `json:"ratings"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), values.Filter{IncludeRetired: r.URL.Query().Get("includeRetired") == "true"})
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

	created, err := h.Service.Create(r.Context(), actor, values.CreateInput{
		Name:        payload.Name,
		Description: payload.Description,
		SortOrder:   payload.SortOrder,
	})
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetActor(r)
	var payload reorderPayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	items, err := h.Service.Reorder(r.Context(), actor, payload.IDs)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var payload scorePayload
	if !shared.DecodeJSON(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}
	api.Success(w, h.Service.CalculateScore(payload.Ratings), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	window := shared.ParseWindow(r, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	summary, err := h.Service.Summary(r.Context(), window)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	if summary == nil {
		summary = []stats.ValueSummary{}
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	window := shared.ParseWindow(r, v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	out, err := h.Service.SummaryPDF(r.Context(), window)
	if err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	filename := "value-summary-" + time.Now().UTC().Format("20060102") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "valueID", v)
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
	id := shared.PathID(r, "valueID", v)
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

	updated, err := h.Service.Update(r.Context(), actor, id, values.UpdateInput{
		Name:        payload.Name,
		Description: payload.Description,
		SortOrder:   payload.SortOrder,
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
	id := shared.PathID(r, "valueID", v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if err := h.Service.Retire(r.Context(), actor, id); err != nil {
		api.FailError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "retired"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	v := shared.NewValidator()
	id := shared.PathID(r, "valueID", v)
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
