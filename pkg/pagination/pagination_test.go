package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(500); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(20); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 2, Limit: 12}).Offset(); got != 24 {
		t.Fatalf("expected offset 24, got %d", got)
	}
	if got := (Params{Page: -1, Limit: 12}).Offset(); got != 0 {
		t.Fatalf("negative page should clamp to 0, got %d", got)
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct{ total, limit, want int }{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 0, 3},
	}
	for _, c := range cases {
		if got := PageCount(c.total, c.limit); got != c.want {
			t.Fatalf("PageCount(%d,%d) = %d want %d", c.total, c.limit, got, c.want)
		}
	}
}

func TestBounds(t *testing.T) {
	cases := []struct {
		params            Params
		total, start, end int
	}{
		{Params{Page: 0, Limit: 12}, 30, 0, 12},
		{Params{Page: 2, Limit: 12}, 30, 24, 30},
		{Params{Page: 5, Limit: 12}, 30, 30, 30},
		{Params{Page: 0, Limit: 12}, 0, 0, 0},
	}
	for _, c := range cases {
		start, end := c.params.Bounds(c.total)
		if start != c.start || end != c.end {
			t.Fatalf("%+v.Bounds(%d) = [%d,%d) want [%d,%d)", c.params, c.total, start, end, c.start, c.end)
		}
	}
}
