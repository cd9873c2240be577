package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"perfeval/internal/platform/apperr"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("write json failed", zap.Error(err))
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// StatusFor maps an error kind onto the HTTP status returned to callers.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// FailError writes a domain error. Collaborator failures keep their cause
// out of the response body; it is logged instead.
func FailError(w http.ResponseWriter, err error, requestID string) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		zap.L().Error("unclassified error", zap.String("request_id", requestID), zap.Error(err))
		Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
		return
	}
	status := StatusFor(appErr.Kind)
	if appErr.Kind == apperr.KindCollaborator {
		zap.L().Error("collaborator failure", zap.String("request_id", requestID), zap.String("op", appErr.Message), zap.Error(appErr.Err))
		Fail(w, status, string(appErr.Kind), "upstream dependency failed", requestID)
		return
	}
	message := appErr.Message
	var details any
	if appErr.Field != "" {
		message = appErr.Field + ": " + message
		details = map[string]string{"field": appErr.Field}
	}
	FailWithDetails(w, status, string(appErr.Kind), message, details, requestID)
}
