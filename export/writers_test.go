package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/anchorscan/anchorscan/models"
)

func sampleTable() *models.ResultTable {
	return &models.ResultTable{Rows: []models.ResultRow{
		{SourceURL: "http://a.test", PageTitle: "Promo Page", AnchorText: "Join Now; Bet Here"},
		{SourceURL: "http://b.test", PageTitle: models.MarkerRemoved, AnchorText: models.MarkerRemoved},
	}}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	wantHeader := []string{"Source URL", "Page Title", "Anchor Text"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header=%v, want %v", records[0], wantHeader)
		}
	}
	if records[2][1] != models.MarkerRemoved {
		t.Fatalf("marker cell=%q, want %q", records[2][1], models.MarkerRemoved)
	}
}

func TestCSVWriterEmptyTableKeepsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(&models.ResultTable{}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records=%d, want header only", len(records))
	}
}

func TestCSVWriterBrandColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brands.csv")

	table := &models.ResultTable{
		BrandColumns: []string{"Action Network", "Vegas Insider"},
		Rows: []models.ResultRow{
			{
				SourceURL:  "http://a.test",
				PageTitle:  "Promo Page",
				AnchorText: "Join; Odds",
				BrandAnchors: map[string]string{
					"Action Network": "Join",
					"Vegas Insider":  "Odds",
				},
			},
		},
	}

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(table); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	wantHeader := []string{"Source URL", "Page Title", "Action Network", "Vegas Insider", "Anchor Text"}
	if len(records) != 2 || len(records[0]) != len(wantHeader) {
		t.Fatalf("records=%v", records)
	}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Fatalf("header=%v, want %v", records[0], wantHeader)
		}
	}
	if records[1][2] != "Join" || records[1][3] != "Odds" {
		t.Fatalf("brand cells=%v", records[1])
	}
}

func TestCSVWriterValidateEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "never_written.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Validate(); err == nil {
		t.Fatal("expected validation failure for empty file")
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	count := 0
	var first models.ResultRow
	for scanner.Scan() {
		var decoded models.ResultRow
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if count == 0 {
			first = decoded
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 2 {
		t.Fatalf("json lines=%d, want 2", count)
	}
	if first.SourceURL != "http://a.test" {
		t.Fatalf("first row url=%q", first.SourceURL)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	jsonPath := filepath.Join(dir, "results.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatal("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatal("json file missing or empty")
	}
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "results.csv")

	if err := WriteCSVFile(path, sampleTable()); err != nil {
		t.Fatalf("write csv file: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output file is empty")
	}
}
