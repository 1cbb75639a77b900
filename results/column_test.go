package results

import (
	"strings"
	"testing"

	"github.com/anchorscan/anchorscan/models"
)

func TestColumnCRLFJoin(t *testing.T) {
	table := &models.ResultTable{Rows: []models.ResultRow{
		{SourceURL: "http://a.test", AnchorText: "Join"},
		{SourceURL: "http://b.test", AnchorText: ""},
		{SourceURL: "http://c.test", AnchorText: "Bet"},
	}}

	got, err := Column(table, models.ColumnAnchorText, false)
	if err != nil {
		t.Fatalf("column: %v", err)
	}

	if got != "Join\r\n\r\nBet" {
		t.Fatalf("column = %q", got)
	}
	if lines := strings.Split(got, "\r\n"); len(lines) != len(table.Rows) {
		t.Fatalf("lines = %d, want %d", len(lines), len(table.Rows))
	}
}

func TestColumnWithHeader(t *testing.T) {
	table := &models.ResultTable{Rows: []models.ResultRow{
		{SourceURL: "http://a.test"},
		{SourceURL: "http://b.test"},
	}}

	got, err := Column(table, models.ColumnSourceURL, true)
	if err != nil {
		t.Fatalf("column: %v", err)
	}

	lines := strings.Split(got, "\r\n")
	if len(lines) != len(table.Rows)+1 {
		t.Fatalf("lines = %d, want %d", len(lines), len(table.Rows)+1)
	}
	if lines[0] != models.ColumnSourceURL {
		t.Fatalf("header = %q, want %q", lines[0], models.ColumnSourceURL)
	}
	if lines[1] != "http://a.test" || lines[2] != "http://b.test" {
		t.Fatalf("values = %v", lines[1:])
	}
}

func TestColumnBrandColumn(t *testing.T) {
	table := &models.ResultTable{
		BrandColumns: []string{"Action Network", "Vegas Insider"},
		Rows: []models.ResultRow{
			{SourceURL: "u1", BrandAnchors: map[string]string{"Action Network": "Join"}},
			{SourceURL: "u2", BrandAnchors: map[string]string{"Vegas Insider": "Odds"}},
		},
	}

	got, err := Column(table, "Action Network", false)
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	if got != "Join\r\n" {
		t.Fatalf("column = %q", got)
	}
}

func TestColumnUnknownName(t *testing.T) {
	table := &models.ResultTable{Rows: []models.ResultRow{{SourceURL: "u1"}}}

	if _, err := Column(table, "Imaginary", false); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestColumnNilTable(t *testing.T) {
	if _, err := Column(nil, models.ColumnSourceURL, false); err == nil {
		t.Fatal("expected error for nil table")
	}
}
