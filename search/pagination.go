package search

import "math"

// Pagination describes where a page sits in the full result set
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Paginate computes page metadata for a total count reported by storage
func Paginate(page, limit int, total int64) Pagination {
	p := Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasPrev: page > 1,
	}
	if limit > 0 && total > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	p.HasNext = page < p.TotalPages
	return p
}

// Offset returns the number of records storage must skip to reach page.
// Offsets past math.MaxInt64 saturate, which storage reports as an empty page.
func Offset(page, limit int) int64 {
	if page < 1 || limit < 1 {
		return 0
	}
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return math.MaxInt64
	}
	return int64(page-1) * int64(limit)
}
