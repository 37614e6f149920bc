package controllers

import "testing"

func TestPaginate(t *testing.T) {
	cases := []struct {
		name     string
		pageStr  string
		total    int64
		wantPage int
		wantOff  int
		wantTot  int
	}{
		{"first page by default", "", 13, 1, 0, 3},
		{"non-numeric falls back to first", "abc", 13, 1, 0, 3},
		{"zero falls back to first", "0", 13, 1, 0, 3},
		{"negative falls back to first", "-2", 13, 1, 0, 3},
		{"valid middle page", "2", 13, 2, 5, 3},
		{"beyond range clamps to last", "99", 13, 3, 10, 3},
		{"exact last page", "3", 13, 3, 10, 3},
		{"no rows still yields page 1", "7", 0, 1, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page, offset, totalPages := paginate(c.pageStr, c.total, 5)
			if page != c.wantPage || offset != c.wantOff || totalPages != c.wantTot {
				t.Fatalf("paginate(%q, %d) = (%d, %d, %d), want (%d, %d, %d)",
					c.pageStr, c.total, page, offset, totalPages, c.wantPage, c.wantOff, c.wantTot)
			}
		})
	}
}
