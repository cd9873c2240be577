package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"perfeval/internal/transport/http/api"
)

// DecodeJSON decodes the request body into dest and writes a 400 when the
// payload is malformed or too large. It reports whether decoding succeeded.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest any, requestID string) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}
