package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// New normalizes page and perPage: non-positive values fall back to the
// defaults and perPage is capped at MaxPerPage.
func New(page, perPage int) Params {
	p := DefaultParams()
	if page > 0 {
		p.Page = page
	}
	if perPage > 0 {
		p.PerPage = min(perPage, MaxPerPage)
	}
	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// FromRequest reads ?page= and ?per_page= from r. Malformed values are
// ignored in favour of the defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return New(page, perPage)
}

// Result wraps one page of items.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds a Result for data, which is one page out of totalCount items.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if params.PerPage > 0 {
		totalPages = (totalCount + params.PerPage - 1) / params.PerPage
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
