package shared

import (
	"net/http"
	"strings"
	"time"

	"perfeval/internal/domain/stats"
)

const dateOnly = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateOnly, value)
}

// ParseWindow reads periodStart and periodEnd from the query string. A
// date-only end covers the whole day. The window only filters when both
// bounds are present, so a lone bound is dropped.
func ParseWindow(r *http.Request, v *Validator) stats.Window {
	rawStart := strings.TrimSpace(r.URL.Query().Get("periodStart"))
	rawEnd := strings.TrimSpace(r.URL.Query().Get("periodEnd"))
	if rawStart == "" || rawEnd == "" {
		return stats.Window{}
	}
	start, okStart := v.Date("periodStart", rawStart)
	end, okEnd := v.Date("periodEnd", rawEnd)
	if !okStart || !okEnd {
		return stats.Window{}
	}
	if _, err := time.Parse(dateOnly, rawEnd); err == nil {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	v.DateOrder("periodStart", start, "periodEnd", end)
	return stats.Window{Start: &start, End: &end}
}
