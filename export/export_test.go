package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/brunobiangulo/esgevidence"
)

func stage(n int) *int { return &n }

func TestBuildScores(t *testing.T) {
	set := esgevidence.ScoreSet{
		Scores: []esgevidence.ThemeScore{{Theme: "TSP", Stage: stage(2), Evidence: []string{"ev-TSP-loc-001"}}},
	}
	line := BuildScores("Acme Inc", 2024, "acme_2024", set)
	if line.Company != "Acme Inc" || line.Year != 2024 || line.DocID != "acme_2024" {
		t.Fatalf("unexpected ScoresLine: %+v", line)
	}
	if len(line.Scores) != 1 || line.Scores[0].Theme != "TSP" {
		t.Fatalf("expected one TSP score, got %+v", line.Scores)
	}
}

func TestWriteScoresJSONLSortedByDocID(t *testing.T) {
	lines := []ScoresLine{
		{DocID: "zzz_2024", Company: "Z", Year: 2024},
		{DocID: "aaa_2024", Company: "A", Year: 2024},
	}
	var buf bytes.Buffer
	if err := WriteScoresJSONL(&buf, lines); err != nil {
		t.Fatalf("WriteScoresJSONL: %v", err)
	}
	out := buf.String()
	if idx1, idx2 := strings.Index(out, "aaa_2024"), strings.Index(out, "zzz_2024"); idx1 == -1 || idx2 == -1 || idx1 > idx2 {
		t.Fatalf("expected aaa_2024 line before zzz_2024, got:\n%s", out)
	}
}

func TestBuildEvidenceBundleTagsSource(t *testing.T) {
	ev := []esgevidence.Evidence{
		{EvidenceID: "ev-TSP-sec-001", DocID: "sec-edgar-acme-2024", ThemeCode: "TSP"},
		{EvidenceID: "ev-GHG-pdf-001", DocID: "acme_2024", ThemeCode: "GHG"},
	}
	bundle := BuildEvidenceBundle(ev)
	if len(bundle) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(bundle))
	}
	bySource := map[string]string{}
	for _, b := range bundle {
		bySource[b.EvidenceID] = b.Source
	}
	if bySource["ev-TSP-sec-001"] != "sec_edgar" {
		t.Fatalf("expected sec_edgar source, got %q", bySource["ev-TSP-sec-001"])
	}
}

func TestWriteSummaryCSVStableColumnOrder(t *testing.T) {
	lines := []ScoresLine{
		{DocID: "acme_2024", Company: "Acme", Year: 2024, Scores: []esgevidence.ThemeScore{
			{Theme: "TSP", Stage: stage(3), Evidence: []string{"e1", "e2"}},
		}},
	}
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, lines); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}
	header := strings.Split(buf.String(), "\n")[0]
	want := "company,year,doc_id,theme,stage,evidence_count,reason"
	if header != want {
		t.Fatalf("header = %q, want %q", header, want)
	}
}

func TestBuildSuccessPinAllIdenticalFalseOnAnyMismatch(t *testing.T) {
	pins := map[string]esgevidence.DeterminismReport{
		"acme_2024": {Identical: true},
		"beta_2024": {Identical: false},
	}
	pin := BuildSuccessPin(42, 0, pins, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if pin.AllIdentical {
		t.Fatalf("expected AllIdentical=false when any pin is non-identical")
	}
}

func TestWriteIndexHTMLRendersRows(t *testing.T) {
	lines := []ScoresLine{
		{DocID: "acme_2024", Company: "Acme", Year: 2024, Scores: []esgevidence.ThemeScore{
			{Theme: "TSP", Stage: stage(1), Evidence: []string{"e1"}},
		}},
	}
	var buf bytes.Buffer
	if err := WriteIndexHTML(&buf, lines, true); err != nil {
		t.Fatalf("WriteIndexHTML: %v", err)
	}
	if !strings.Contains(buf.String(), "acme_2024") {
		t.Fatalf("expected rendered doc_id in HTML output")
	}
}
