package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowNeedsBothBounds(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodGet, "/?periodStart=2026-01-01", nil)
	w := ParseWindow(r, v)
	assert.False(t, w.Active())
	assert.False(t, v.HasIssues())
}

func TestParseWindowExtendsDateOnlyEnd(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodGet, "/?periodStart=2026-01-01&periodEnd=2026-03-31", nil)
	w := ParseWindow(r, v)
	require.True(t, w.Active())
	assert.False(t, v.HasIssues())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *w.Start)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), *w.End)
}

func TestParseWindowKeepsTimestampEnd(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodGet, "/?periodStart=2026-01-01&periodEnd=2026-03-31T12:00:00Z", nil)
	w := ParseWindow(r, v)
	require.True(t, w.Active())
	assert.Equal(t, time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC), *w.End)
}

func TestParseWindowRejectsBadInput(t *testing.T) {
	v := NewValidator()
	r := httptest.NewRequest(http.MethodGet, "/?periodStart=nope&periodEnd=2026-03-31", nil)
	ParseWindow(r, v)
	assert.True(t, v.HasIssues())

	v = NewValidator()
	r = httptest.NewRequest(http.MethodGet, "/?periodStart=2026-04-01&periodEnd=2026-03-31", nil)
	ParseWindow(r, v)
	require.True(t, v.HasIssues())
	assert.Equal(t, "periodEnd", v.Issues()[0].Field)
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathID(t *testing.T) {
	v := NewValidator()
	r := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	assert.Equal(t, int64(42), PathID(r, "id", v))
	assert.False(t, v.HasIssues())

	r = withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "-1")
	assert.Zero(t, PathID(r, "id", v))
	assert.True(t, v.HasIssues())
}

func TestQueryID(t *testing.T) {
	v := NewValidator()
	assert.Nil(t, QueryID(httptest.NewRequest(http.MethodGet, "/", nil), "periodId", v))
	got := QueryID(httptest.NewRequest(http.MethodGet, "/?periodId=3", nil), "periodId", v)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), *got)
	QueryID(httptest.NewRequest(http.MethodGet, "/?periodId=x", nil), "periodId", v)
	assert.True(t, v.HasIssues())
}

func TestValidatorStruct(t *testing.T) {
	type payload struct {
		Name   string `json:"name" validate:"required,max=5"`
		Policy string `json:"targetPolicy" validate:"omitempty,oneof=a b"`
	}
	v := NewValidator()
	v.Struct(payload{Name: "", Policy: "c"})
	issues := v.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "name", issues[0].Field)
	assert.Equal(t, "is required", issues[0].Reason)
	assert.Equal(t, "targetPolicy", issues[1].Field)

	v = NewValidator()
	v.Struct(payload{Name: "ok"})
	assert.False(t, v.HasIssues())
}

func TestRejectWritesValidationError(t *testing.T) {
	v := NewValidator()
	v.Add("name", "is required")
	rr := httptest.NewRecorder()
	assert.True(t, v.Reject(rr, "req-1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "validation_error")
}

func TestDecodeJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	assert.True(t, DecodeJSON(rr, r, &dest, ""))
	assert.Equal(t, "x", dest.Name)

	rr = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.False(t, DecodeJSON(rr, r, &dest, ""))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestParsePage(t *testing.T) {
	v := NewValidator()
	page := ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=1000&offset=5", nil), AuditPage, v)
	assert.False(t, v.HasIssues())
	assert.Equal(t, 500, page.Limit)
	assert.Equal(t, 5, page.Offset)

	page = ParsePage(httptest.NewRequest(http.MethodGet, "/", nil), HistoryPage, v)
	assert.Equal(t, Page{Limit: 50}, page)
	assert.False(t, v.HasIssues())
}

func TestParsePageRejectsMalformed(t *testing.T) {
	v := NewValidator()
	page := ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=abc&offset=-1", nil), NotificationPage, v)
	assert.Equal(t, Page{Limit: 100}, page)
	assert.Equal(t, []ValidationIssue{
		{Field: "limit", Reason: "must be a positive integer"},
		{Field: "offset", Reason: "must be zero or a positive integer"},
	}, v.Issues())
}

func TestSetTotal(t *testing.T) {
	rr := httptest.NewRecorder()
	SetTotal(rr, 42)
	assert.Equal(t, "42", rr.Header().Get("X-Total-Count"))
}
