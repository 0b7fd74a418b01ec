// Package listutil parses and describes paged listings.
package listutil

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"bookswap/internal/domain/failure"
)

const (
	// DefaultPageSize applies when the caller sends no page size.
	DefaultPageSize = 20
	// MaxPageSize is the upper clamp for page size.
	MaxPageSize = 100
	// MaxPage keeps (page-1)*MaxPageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Validation errors.
var (
	ErrInvalidPage     = failure.Validation("page must be a positive integer")
	ErrPageOutOfRange  = failure.Validation("page is out of range")
	ErrInvalidPageSize = failure.Validation("page_size must be an integer")
)

// PageParams carries a 1-indexed page request.
type PageParams struct {
	Page     int
	PageSize int
}

// PageInfo carries pagination metadata returned alongside a page.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageParams validates page and clamps pageSize to [1, MaxPageSize].
// PRE: none
// POST: Returns ErrInvalidPage if page < 1, ErrPageOutOfRange if page > MaxPage
func NewPageParams(page, pageSize int) (PageParams, error) {
	if page < 1 {
		return PageParams{}, ErrInvalidPage
	}
	if page > MaxPage {
		return PageParams{}, ErrPageOutOfRange
	}
	return PageParams{Page: page, PageSize: ClampPageSize(pageSize)}, nil
}

// ClampPageSize bounds n to [1, MaxPageSize].
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParsePageParams extracts page and page_size from URL query values.
// Missing values take defaults; malformed values are validation errors.
func ParsePageParams(q url.Values) (PageParams, error) {
	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if errors.Is(err, strconv.ErrRange) {
			return PageParams{}, ErrPageOutOfRange
		}
		if err != nil {
			return PageParams{}, ErrInvalidPage
		}
		page = n
	}
	pageSize := DefaultPageSize
	if raw := strings.TrimSpace(q.Get("page_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return PageParams{}, ErrInvalidPageSize
		}
		pageSize = n
	}
	return NewPageParams(page, pageSize)
}

// Offset returns the SQL OFFSET for the page.
// PRE: p was built by NewPageParams
// POST: Returns (Page-1) * PageSize, never negative
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPageInfo computes pagination metadata.
// A page past the end is reported as requested; its slice is simply empty.
// PRE: total >= 0
func NewPageInfo(p PageParams, total int) PageInfo {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (total + p.PageSize - 1) / p.PageSize
	}
	return PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a later page holds rows.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}
