package notificationshandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/domain/notifications"
	"perfeval/internal/platform/apperr"
	"perfeval/internal/requestctx"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeService struct {
	recipient string
	limit     int
	readID    int64
	countErr  error
	markErr   error
}

func (f *fakeService) List(ctx context.Context, recipient string, limit, offset int) ([]notifications.Notification, error) {
	f.recipient = recipient
	f.limit = limit
	return []notifications.Notification{{ID: 1, Type: notifications.TypeSelfAssessmentSubmitted, Title: "t"}}, nil
}

func (f *fakeService) Count(ctx context.Context, recipient string) (int, error) {
	return 7, f.countErr
}

func (f *fakeService) MarkRead(ctx context.Context, recipient string, notificationID int64) error {
	f.readID = notificationID
	return f.markErr
}

func serve(svc Service, method, path, actor string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	req := httptest.NewRequest(method, path, nil)
	if actor != "" {
		req = req.WithContext(requestctx.WithActor(req.Context(), actor))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestListUsesActorAsRecipient(t *testing.T) {
	svc := &fakeService{}
	rr := serve(svc, http.MethodGet, "/notifications?limit=1000", "12")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "12", svc.recipient)
	assert.Equal(t, 500, svc.limit)
	assert.Equal(t, "7", rr.Header().Get("X-Total-Count"))
}

func TestListRejectsMalformedPage(t *testing.T) {
	svc := &fakeService{}
	rr := serve(svc, http.MethodGet, "/notifications?offset=-3", "12")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"field":"offset"`)
	assert.Empty(t, svc.recipient)
}

func TestListCountFailureStillLists(t *testing.T) {
	svc := &fakeService{countErr: errors.New("boom")}
	rr := serve(svc, http.MethodGet, "/notifications", "12")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListRequiresActor(t *testing.T) {
	rr := serve(&fakeService{}, http.MethodGet, "/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMarkRead(t *testing.T) {
	svc := &fakeService{}
	rr := serve(svc, http.MethodPost, "/notifications/4/read", "12")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(4), svc.readID)

	rr = serve(svc, http.MethodPost, "/notifications/zero/read", "12")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMarkReadStoreFailure(t *testing.T) {
	svc := &fakeService{markErr: apperr.Collaborator("notifications: mark read", errors.New("db down"))}
	rr := serve(svc, http.MethodPost, "/notifications/4/read", "12")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
