package filter

import (
	"testing"
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
)

type doc map[string]any

func (d doc) Value(field string) (any, bool) {
	v, ok := d[field]
	return v, ok
}

func TestMatches_ConjunctionAndDisjunction(t *testing.T) {
	req := &Request{
		Exact:  []ExactFilter{{Field: "category", Value: "Sports"}},
		Search: []SearchGroup{{Fields: []string{"title", "tags"}, Text: "cup"}},
	}

	tests := []struct {
		name string
		d    doc
		want bool
	}{
		{"both", doc{"category": "Sports", "title": "World CUP"}, true},
		{"tag match", doc{"category": "Sports", "title": "Final", "tags": []string{"cupcake"}}, true},
		{"wrong category", doc{"category": "Labs", "title": "cup"}, false},
		{"no text match", doc{"category": "Sports", "title": "Final"}, false},
		{"missing field", doc{"title": "cup"}, false},
	}
	for _, tt := range tests {
		if got := req.Matches(tt.d); got != tt.want {
			t.Errorf("%s: Matches() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatches_Range(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &Request{Ranges: []RangeFilter{{Field: "eventDate", From: &now}}}

	if req.Matches(doc{"eventDate": now.Add(-time.Hour)}) {
		t.Error("past date should not match")
	}
	if !req.Matches(doc{"eventDate": now}) {
		t.Error("lower bound is inclusive")
	}
	if req.Matches(doc{}) {
		t.Error("missing date should not match")
	}
}

func TestApply_SortAndLimit(t *testing.T) {
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 1, 0)

	items := []doc{
		{"id": "a", "date": d1, "createdAt": d1},
		{"id": "b", "date": d2, "createdAt": d1},
		{"id": "c", "date": d2, "createdAt": d2},
		{"id": "d"},
	}
	req := &Request{Sort: []schema.SortKey{schema.Desc("date"), schema.Desc("createdAt")}, Limit: 3}

	got := Apply(req, items)
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, id := range want {
		if got[i]["id"] != id {
			t.Errorf("got[%d] = %v, want %s", i, got[i]["id"], id)
		}
	}
}

func TestCompare(t *testing.T) {
	if Compare(float64(2), int64(2)) != 0 {
		t.Error("numbers of different widths should compare equal")
	}
	if Compare(false, true) >= 0 {
		t.Error("false sorts before true")
	}
	if Compare("a", float64(1)) == 0 {
		t.Error("mismatched types are never equal")
	}
}
