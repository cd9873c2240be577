package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"perfeval/internal/platform/apperr"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFailErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("dimension", "is required"), http.StatusBadRequest, "validation_error"},
		{apperr.NotFound("self_assessment", 4), http.StatusNotFound, "not_found"},
		{apperr.StateConflict("self_assessment", "not a draft"), http.StatusConflict, "state_conflict"},
		{apperr.Collaborator("assessment: insert", errors.New("password=secret")), http.StatusBadGateway, "collaborator_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FailError(rec, tc.err, "req-1")
		assert.Equal(t, tc.status, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, tc.code, env.Error.Code)
		assert.Equal(t, "req-1", env.RequestID)
		assert.NotContains(t, rec.Body.String(), "secret")
	}
}

func TestFailErrorIncludesField(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperr.Validation("dimension", "is required"), "")
	env := decode(t, rec)
	assert.Equal(t, "dimension: is required", env.Error.Message)
	assert.Equal(t, map[string]any{"field": "dimension"}, env.Error.Details)
}

func TestSuccessAndCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]int{"id": 3}, "req-2")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":3},"requestId":"req-2"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Success(rec, []string{}, "")
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
