package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"perfeval/internal/transport/http/api"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused with 413 before routing; a body without one is wrapped
// so that reading past the cap fails inside the handler's decoder.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				requestID := GetRequestID(r.Context())
				zap.L().Warn("request body over limit",
					zap.String("request_id", requestID),
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("limit", maxBytes),
				)
				api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request payload too large", requestID)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
