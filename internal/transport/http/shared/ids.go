package shared

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// PathID reads a positive integer route parameter, recording an issue when
// it is malformed.
func PathID(r *http.Request, name string, v *Validator) int64 {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		v.Add(name, "must be a positive integer")
		return 0
	}
	return id
}

// QueryID reads an optional positive integer query parameter.
func QueryID(r *http.Request, name string, v *Validator) *int64 {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		v.Add(name, "must be a positive integer")
		return nil
	}
	return &id
}
