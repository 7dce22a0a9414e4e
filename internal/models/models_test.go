package models

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Senior Backend Engineer", "senior-backend-engineer"},
		{"  Senior  Backend Engineer!  ", "senior-backend-engineer"},
		{"QA Engineer", "qa-engineer"},
		{"C++ Developer (Remote)", "c-developer-remote"},
		{"already-a-slug", "already-a-slug"},
		{"", ""},
		{"   ", ""},
		{"Data & ML", "data--ml"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	// Slugifying a slug must not change it.
	inputs := []string{"Senior Backend Engineer", "C++ Developer (Remote)", "Data & ML"}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, pageSize, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.pageSize); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestNewPageClampsPage(t *testing.T) {
	items := make([]Job, 25)
	for i := range items {
		items[i] = Job{ID: string(rune('a' + i))}
	}

	// Page beyond the end clamps to the last page.
	p := NewPage(items, 9, 10)
	if p.Page != 3 {
		t.Errorf("page = %d, want 3", p.Page)
	}
	if len(p.Results) != 5 {
		t.Errorf("results = %d, want 5", len(p.Results))
	}
	if p.Pages != 3 || p.Total != 25 {
		t.Errorf("pages = %d total = %d, want 3 and 25", p.Pages, p.Total)
	}

	// Page below one clamps to one.
	p = NewPage(items, 0, 10)
	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
	if len(p.Results) != 10 {
		t.Errorf("results = %d, want 10", len(p.Results))
	}
}

func TestNewPageEmpty(t *testing.T) {
	p := NewPage([]Candidate{}, 1, 20)
	if p.Total != 0 || p.Pages != 1 || p.Page != 1 {
		t.Errorf("empty page = %+v", p)
	}
	if len(p.Results) != 0 {
		t.Errorf("results = %d, want 0", len(p.Results))
	}
}

func TestStageValid(t *testing.T) {
	for _, s := range Stages {
		if !s.Valid() {
			t.Errorf("stage %q should be valid", s)
		}
	}
	if Stage("promoted").Valid() {
		t.Error("unknown stage should not be valid")
	}
}
