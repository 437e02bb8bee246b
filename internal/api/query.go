package api

import (
	"net/url"
	"strconv"
)

// Query describes a list request: pagination plus the active filters.
type Query struct {
	Page     int
	PageSize int
	Filters  map[string]string
}

// Encode serializes the query. Only non-empty filter values are sent; an
// empty string means "no constraint" and must not reach the wire.
func (q Query) Encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	for name, value := range q.Filters {
		if value != "" {
			v.Set(name, value)
		}
	}
	return v.Encode()
}
