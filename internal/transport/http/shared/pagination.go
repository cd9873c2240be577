package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// PageSize is the default and the ceiling of one listing's page.
type PageSize struct {
	Default int
	Max     int
}

var (
	HistoryPage      = PageSize{Default: 50, Max: 200}
	AuditPage        = PageSize{Default: 100, Max: 500}
	NotificationPage = PageSize{Default: 100, Max: 500}
)

type Page struct {
	Limit  int
	Offset int
}

// ParsePage reads limit and offset from the query. Malformed values are
// recorded on v; a limit over the ceiling is clamped to it.
func ParsePage(r *http.Request, size PageSize, v *Validator) Page {
	page := Page{Limit: size.Default}
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			v.Add("limit", "must be a positive integer")
		} else {
			page.Limit = n
		}
	}
	if raw := strings.TrimSpace(q.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			v.Add("offset", "must be zero or a positive integer")
		} else {
			page.Offset = n
		}
	}
	if size.Max > 0 && page.Limit > size.Max {
		page.Limit = size.Max
	}
	return page
}

// SetTotal exposes the unpaged result size next to a page of items.
func SetTotal(w http.ResponseWriter, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
}
