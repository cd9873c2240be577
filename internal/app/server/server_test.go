package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/domain/notifications"
	"perfeval/internal/platform/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "test",
		MaxBodyBytes:       1 << 20,
		StatsCacheTTL:      time.Minute,
		MetricsEnabled:     true,
		RateLimitPerMinute: 100,
		JWTSecret:          "secret",
		CORSAllowedOrigins: []string{"https://app.example.com"},
	}
}

func newTestRouter(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	templates, err := notifications.LoadTemplates("")
	require.NoError(t, err)
	cfg := testConfig()
	return NewRouter(cfg, BuildServices(cfg, mock, nil, templates)), mock
}

func TestHealthAndReady(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsCountsRequests(t *testing.T) {
	router, _ := newTestRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var env struct {
		Data map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.GreaterOrEqual(t, env.Data["requestsTotal"], 1.0)
	assert.Contains(t, env.Data, "assessmentSubmissionTotal")
}

func TestMutationsRequireActor(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/kpis"},
		{http.MethodPut, "/api/v1/values/order"},
		{http.MethodPost, "/api/v1/self-assessments/1/submit"},
		{http.MethodGet, "/api/v1/notifications"},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}

func TestCategoriesThroughStack(t *testing.T) {
	router, mock := newTestRouter(t)
	mock.ExpectQuery("SELECT DISTINCT category").
		WithArgs("active").
		WillReturnRows(pgxmock.NewRows([]string{"category"}).AddRow("Quality").AddRow("Sales"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/kpis/categories", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `["Quality","Sales"]`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/kpis", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
