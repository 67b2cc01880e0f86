// Package shared holds listing helpers common to the master-data entities.
package shared

import (
	"net/http"
	"strconv"
)

// ListFilters captures the query parameters accepted by master-data
// listing endpoints.
type ListFilters struct {
	Page         int
	Limit        int
	Search       string
	SortBy       string
	SortDir      string
	DepartmentID *int64
	PublisherID  *int64
	IsActive     *bool
}

// Offset computes the SQL offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ParseListFilters reads the common listing query parameters from a request.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if v := q.Get("department_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.DepartmentID = &id
		}
	}
	if v := q.Get("publisher_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.PublisherID = &id
		}
	}
	if v := q.Get("is_active"); v != "" {
		isActive := v == "true"
		filters.IsActive = &isActive
	}
	return filters
}
