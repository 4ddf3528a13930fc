package query

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Page is a parsed, clamped page request.
type Page struct {
	Page  int
	Limit int
}

// Pagination is the paginationResult block of a list response.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	Limit         int   `json:"limit"`
	NumberOfPages int   `json:"numberOfPages"`
	Next          *int  `json:"next,omitempty"`
	Prev          *int  `json:"prev,omitempty"`
	Skip          int64 `json:"-"`
}

// ParsePage reads page and limit, falling back to defaults on missing or
// unparseable values.
func ParsePage(params url.Values) Page {
	page, err := strconv.Atoi(params.Get("page"))
	if err != nil {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(params.Get("limit"))
	if err != nil {
		limit = DefaultLimit
	}
	return Page{Page: page, Limit: limit}
}

// Paginate clamps page to >= 1 and limit to [1, MaxLimit] and computes the
// skip offset plus next/prev links for total matching documents.
func Paginate(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	skip := int64(page-1) * int64(limit)
	p := Pagination{
		CurrentPage:   page,
		Limit:         limit,
		NumberOfPages: int((total + int64(limit) - 1) / int64(limit)),
		Skip:          skip,
	}
	if int64(page)*int64(limit) < total {
		next := page + 1
		p.Next = &next
	}
	if skip > 0 {
		prev := page - 1
		p.Prev = &prev
	}
	return p
}
