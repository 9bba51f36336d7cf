package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type pageParams struct {
	page  int
	limit int
}

// parsePageParams reads ?page= and ?limit=. Out-of-range or malformed
// values fall back to defaults; limit is capped at maxPageSize.
func parsePageParams(r *http.Request) pageParams {
	params := pageParams{page: 1, limit: defaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			params.page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > maxPageSize {
				limit = maxPageSize
			}
			params.limit = limit
		}
	}
	return params
}

func (p pageParams) offset() int {
	return (p.page - 1) * p.limit
}

type pageEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginate wraps results in the {count,next,previous,results} envelope
// with absolute page links.
func paginate(r *http.Request, params pageParams, count int64, results any) pageEnvelope {
	envelope := pageEnvelope{Count: count, Results: results}

	lastPage := int((count + int64(params.limit) - 1) / int64(params.limit))
	if params.page < lastPage {
		envelope.Next = pageLink(r, params.page+1)
	}
	if params.page > 1 {
		envelope.Previous = pageLink(r, params.page-1)
	}
	return envelope
}

func pageLink(r *http.Request, page int) *string {
	query := r.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	link := options.SiteURL + r.URL.Path
	if encoded := query.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return &link
}
