package reportmath

import "strings"

// Pagination is the page metadata block returned by every listing endpoint.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalRecords   int64 `json:"totalRecords"`
	RecordsPerPage int   `json:"recordsPerPage"`
	HasNextPage    bool  `json:"hasNextPage"`
	HasPrevPage    bool  `json:"hasPrevPage"`
}

// Paginate derives page metadata from a 1-indexed page, a page size and the
// total row count. Page and limit are clamped to sane minimums so a bad query
// string can never produce a negative offset.
func Paginate(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalRecords:   total,
		RecordsPerPage: limit,
		HasNextPage:    page < totalPages,
		HasPrevPage:    page > 1,
	}
}

// Offset converts the 1-indexed page to a SQL offset.
func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.RecordsPerPage
}

// OrderClause maps a caller-supplied sort key through an allow-list of
// sortable columns. Unknown keys fall back to the default clause so the
// parameter can never inject arbitrary SQL into ORDER BY.
func OrderClause(allowed map[string]string, sortBy, sortOrder, fallback string) string {
	col, ok := allowed[sortBy]
	if !ok {
		return fallback
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}
