package reportmath

import "testing"

func TestPaginate(t *testing.T) {
	cases := []struct {
		page, limit int
		total       int64
		totalPages  int
		hasNext     bool
		hasPrev     bool
	}{
		{1, 20, 0, 0, false, false},
		{1, 20, 20, 1, false, false},
		{1, 20, 21, 2, true, false},
		{2, 20, 21, 2, false, true},
		{3, 10, 95, 10, true, true},
		{10, 10, 95, 10, false, true},
		{0, 0, 45, 3, true, false}, // clamped to page=1, limit=20
	}
	for _, tc := range cases {
		p := Paginate(tc.page, tc.limit, tc.total)
		if p.TotalPages != tc.totalPages {
			t.Errorf("Paginate(%d,%d,%d) totalPages=%d want %d", tc.page, tc.limit, tc.total, p.TotalPages, tc.totalPages)
		}
		if p.HasNextPage != tc.hasNext || p.HasPrevPage != tc.hasPrev {
			t.Errorf("Paginate(%d,%d,%d) next=%v prev=%v want %v/%v", tc.page, tc.limit, tc.total, p.HasNextPage, p.HasPrevPage, tc.hasNext, tc.hasPrev)
		}
		// hasNextPage must hold exactly when more pages exist
		if p.HasNextPage != (p.CurrentPage < p.TotalPages) {
			t.Errorf("Paginate(%d,%d,%d): hasNextPage inconsistent with totalPages", tc.page, tc.limit, tc.total)
		}
		if int64(p.CurrentPage)*int64(p.RecordsPerPage) > p.TotalRecords+int64(p.RecordsPerPage) {
			t.Errorf("Paginate(%d,%d,%d): page window exceeds total records", tc.page, tc.limit, tc.total)
		}
	}
}

func TestOrderClause(t *testing.T) {
	allowed := map[string]string{
		"created_date":      "collection_cases.created_at",
		"total_outstanding": "collection_cases.total_outstanding",
	}
	cases := []struct {
		sortBy, sortOrder, want string
	}{
		{"created_date", "asc", "collection_cases.created_at ASC"},
		{"created_date", "desc", "collection_cases.created_at DESC"},
		{"created_date", "bogus", "collection_cases.created_at DESC"},
		{"total_outstanding", "ASC", "collection_cases.total_outstanding ASC"},
		{"evil; DROP TABLE users", "asc", "collection_cases.created_at DESC"},
		{"", "", "collection_cases.created_at DESC"},
	}
	for _, tc := range cases {
		got := OrderClause(allowed, tc.sortBy, tc.sortOrder, "collection_cases.created_at DESC")
		if got != tc.want {
			t.Errorf("OrderClause(%q,%q)=%q want %q", tc.sortBy, tc.sortOrder, got, tc.want)
		}
	}
}
