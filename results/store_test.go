package results

import (
	"testing"

	"github.com/anchorscan/anchorscan/models"
)

func TestStoreReplacesWholesale(t *testing.T) {
	s := NewStore()

	if s.Get() != nil {
		t.Fatal("fresh store should be empty")
	}

	first := &models.ResultTable{Rows: []models.ResultRow{{SourceURL: "u1"}}}
	s.Set(first)
	if got := s.Get(); got != first {
		t.Fatalf("Get = %p, want %p", got, first)
	}

	second := &models.ResultTable{Rows: []models.ResultRow{{SourceURL: "u2"}, {SourceURL: "u3"}}}
	s.Set(second)
	got := s.Get()
	if got != second {
		t.Fatal("Set should replace, not merge")
	}
	if len(got.Rows) != 2 || got.Rows[0].SourceURL != "u2" {
		t.Fatalf("unexpected rows after replace: %+v", got.Rows)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Set(&models.ResultTable{Rows: []models.ResultRow{{SourceURL: "u1"}}})
	s.Clear()
	if s.Get() != nil {
		t.Fatal("Clear should drop the table")
	}
}
