package audithandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/domain/audit"
	"perfeval/internal/requestctx"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeService struct {
	filter  audit.Filter
	limit   int
	listErr error
}

func (f *fakeService) Count(ctx context.Context, filter audit.Filter) (int, error) {
	return 2, nil
}

func (f *fakeService) List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	f.filter = filter
	f.limit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	return []audit.Event{
		{ID: 1, ActorID: "9", Action: "kpi.create", EntityType: "kpi", EntityID: "3", RequestID: "r1", IP: "10.0.0.1", CreatedAt: at},
		{ID: 2, ActorID: "9", Action: "kpi.update", EntityType: "kpi", EntityID: "3", CreatedAt: at},
	}, nil
}

func serve(svc Service, path, actor string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if actor != "" {
		req = req.WithContext(requestctx.WithActor(req.Context(), actor))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestListEventsFilters(t *testing.T) {
	svc := &fakeService{}
	rr := serve(svc, "/audit/events?entityType=kpi&entityId=3&action=kpi.create&actorId=9", "1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, audit.Filter{Action: "kpi.create", EntityType: "kpi", EntityID: "3", ActorID: "9"}, svc.filter)
	assert.Equal(t, "2", rr.Header().Get("X-Total-Count"))
}

func TestListEventsRejectsMalformedLimit(t *testing.T) {
	rr := serve(&fakeService{}, "/audit/events?limit=lots", "1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"field":"limit"`)
}

func TestListEventsRequiresActor(t *testing.T) {
	rr := serve(&fakeService{}, "/audit/events", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListEventsFailure(t *testing.T) {
	rr := serve(&fakeService{listErr: errors.New("db down")}, "/audit/events", "1")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestExportCSV(t *testing.T) {
	svc := &fakeService{}
	rr := serve(svc, "/audit/events/export", "1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, exportLimit, svc.limit)

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,actor_id,action,entity_type,entity_id,request_id,ip,created_at", lines[0])
	assert.Equal(t, "1,9,kpi.create,kpi,3,r1,10.0.0.1,2026-02-03T04:05:06Z", lines[1])
}
