package query

import (
	"errors"
	"testing"
)

func TestParsePageDefaults(t *testing.T) {
	p, err := ParsePage("", "")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if p.Number != DefaultPage || p.Limit != DefaultLimit {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected zero offset, got %d", p.Offset())
	}
}

func TestParsePageOffsets(t *testing.T) {
	p, err := ParsePage("2", "10")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if p.Offset() != 10 {
		t.Fatalf("page 2 limit 10 should skip 10 rows, got %d", p.Offset())
	}
}

func TestParsePageRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		page  string
		limit string
	}{
		{"zero page", "0", "10"},
		{"negative limit", "1", "-1"},
		{"non numeric page", "abc", "10"},
		{"non numeric limit", "1", "ten"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePage(tc.page, tc.limit)
			var invalid ErrInvalidPage
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidPage, got %v", err)
			}
		})
	}
}

func TestParsePageCapsLimit(t *testing.T) {
	p, err := ParsePage("1", "100000")
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestParseSortWhitelist(t *testing.T) {
	allowed := map[string]string{"createdAt": "v.created_at", "views": "v.views"}

	s, err := ParseSort("views", "desc", allowed, "v.created_at")
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}
	if s.Clause() != "ORDER BY v.views DESC" {
		t.Fatalf("unexpected clause %q", s.Clause())
	}

	s, err = ParseSort("", "", allowed, "v.created_at")
	if err != nil {
		t.Fatalf("parse default sort: %v", err)
	}
	if s.Clause() != "ORDER BY v.created_at ASC" {
		t.Fatalf("unexpected default clause %q", s.Clause())
	}

	if _, err := ParseSort("password", "asc", allowed, "v.created_at"); err == nil {
		t.Fatal("expected unlisted sort field to be rejected")
	}
}

func TestLikePatternEscapesMetacharacters(t *testing.T) {
	got := LikePattern("100%_go")
	want := `%100\%\_go%`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
