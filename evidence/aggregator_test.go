package evidence

import (
	"strings"
	"testing"

	"github.com/brunobiangulo/esgevidence"
)

func TestTruncate30WordsUnchangedUnder30(t *testing.T) {
	text := "short text under thirty words"
	if got := Truncate30Words(text); got != text {
		t.Fatalf("got %q, want unchanged %q", got, text)
	}
}

func TestTruncate30WordsSentenceBoundaryAfterWord20(t *testing.T) {
	words := make([]string, 0, 35)
	for i := 0; i < 20; i++ {
		words = append(words, "word")
	}
	words = append(words, "stop.")
	for i := 0; i < 15; i++ {
		words = append(words, "more")
	}
	text := strings.Join(words, " ")
	got := Truncate30Words(text)
	if !strings.HasSuffix(got, "stop.") {
		t.Fatalf("expected cut at sentence boundary, got %q", got)
	}
}

func TestTruncate30WordsEllipsisWhenNoEarlyBoundary(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	got := Truncate30Words(text)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis truncation, got %q", got)
	}
	if WordCount(strings.TrimSuffix(got, "...")) != 30 {
		t.Fatalf("expected exactly 30 words before ellipsis, got %q", got)
	}
}

func TestSelectEvidenceSourcePriorityAndMinPerTheme(t *testing.T) {
	findings := []esgevidence.Finding{
		{Text: "pdf finding about climate targets.", Theme: "Climate", SourceID: "pdf", DocID: "d1"},
		{Text: "sec finding about climate targets.", Theme: "Climate", SourceID: "sec_edgar", DocID: "d1"},
		{Text: "cdp finding about climate targets.", Theme: "Climate", SourceID: "cdp", DocID: "d1"},
	}
	ev := SelectEvidence(findings, 2)
	if len(ev) != 2 {
		t.Fatalf("expected 2 evidence records, got %d", len(ev))
	}
	if !strings.Contains(ev[0].Extract30w, "sec finding") {
		t.Fatalf("expected sec_edgar finding selected first, got %+v", ev[0])
	}
	if !strings.Contains(ev[1].Extract30w, "cdp finding") {
		t.Fatalf("expected cdp finding selected second, got %+v", ev[1])
	}
}

func TestSelectEvidenceFewerThanMinIsAllowed(t *testing.T) {
	findings := []esgevidence.Finding{
		{Text: "only one finding here.", Theme: "Governance", SourceID: "pdf", DocID: "d1"},
	}
	ev := SelectEvidence(findings, 2)
	if len(ev) != 1 {
		t.Fatalf("expected 1 evidence record when fewer exist, got %d", len(ev))
	}
}

func TestCanonicalThemeMappingAndPassthrough(t *testing.T) {
	if CanonicalTheme("Climate") != "TSP" {
		t.Fatalf("expected Climate -> TSP")
	}
	if CanonicalTheme("SomeUnknownTheme") != "SomeUnknownTheme" {
		t.Fatalf("expected unknown theme to pass through unchanged")
	}
}

func TestValidateSchemaRejectsOversizedWordCount(t *testing.T) {
	bad := esgevidence.Evidence{
		EvidenceID: "ev-TSP-sec-001",
		DocID:      "d1",
		ThemeCode:  "TSP",
		Extract30w: strings.Repeat("word ", 31),
		SHA256:     strings.Repeat("a", 64),
	}
	errs := ValidateSchema([]esgevidence.Evidence{bad})
	if len(errs) == 0 {
		t.Fatalf("expected validation error for >30 words")
	}
}

func TestValidateSchemaRejectsBadHashLength(t *testing.T) {
	bad := esgevidence.Evidence{
		EvidenceID: "ev-TSP-sec-001",
		DocID:      "d1",
		ThemeCode:  "TSP",
		Extract30w: "a short quote.",
		SHA256:     "deadbeef",
	}
	errs := ValidateSchema([]esgevidence.Evidence{bad})
	if len(errs) == 0 {
		t.Fatalf("expected validation error for bad hash length")
	}
}
